package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr    string
	DBPath  string
	Env     string
	PerPage int
}

// Load reads configuration from the environment, after loading a .env
// file when one is present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:    getEnv("LEANBB_ADDR", ":8080"),
		DBPath:  getEnv("LEANBB_DB", "leanbb.sqlite"),
		Env:     getEnv("LEANBB_ENV", "dev"),
		PerPage: getEnvAsInt("LEANBB_PER_PAGE", 20),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return fallback
}
