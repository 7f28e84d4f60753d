package main

import (
	"net/http"

	"github.com/leanbb/leanbb/internal/config"
	"github.com/leanbb/leanbb/internal/database"
	"github.com/leanbb/leanbb/internal/session"
	"github.com/leanbb/leanbb/internal/settings"
	"github.com/leanbb/leanbb/web"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// defaultAdminPassword is the seed password for the "admin" account.
// Change it after first login.
const defaultAdminPassword = "password"

func main() {
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Env == "dev" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer db.Close()

	adminHash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("hash default admin password", zap.Error(err))
	}
	if err := database.Setup(db, string(adminHash)); err != nil {
		logger.Fatal("setup database", zap.Error(err))
	}

	server := web.New(db, settings.New(db), session.NewStore(), logger, cfg.PerPage)

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, server.Handler()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
