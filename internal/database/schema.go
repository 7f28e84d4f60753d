package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Queryer is satisfied by both *sql.DB and *sql.Tx.
type Queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const schema = `
	CREATE TABLE IF NOT EXISTS settings (key TEXT PRIMARY KEY, value TEXT);
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		is_admin INTEGER DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
	CREATE TABLE IF NOT EXISTS boards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		description TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		board_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_posts_board_id ON posts(board_id);
	CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
	CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
	CREATE TABLE IF NOT EXISTS replies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_replies_post_id ON replies(post_id);
	CREATE INDEX IF NOT EXISTS idx_replies_user_id ON replies(user_id);`

// Open opens the sqlite database at path with foreign keys enabled so
// cascade deletes fire, and WAL journaling.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Setup creates all tables and seeds the defaults: site settings, the
// "admin" user (with the given password hash) and the "General" board.
// It is idempotent.
func Setup(db *sql.DB, adminPasswordHash string) error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	now := time.Now().Unix()

	defaults := [][2]string{
		{"site_title", "LeanBB"},
		{"logo_url", ""},
		{"copyright_info", fmt.Sprintf("© %d LeanBB. Powered by LeanBB", time.Now().Year())},
		{"allow_registration", "1"},
	}
	for _, kv := range defaults {
		_, err := db.Exec(`
			INSERT OR IGNORE INTO settings (key, value)
			VALUES (?, ?)`, kv[0], kv[1])
		if err != nil {
			return err
		}
	}

	_, err := db.Exec(`
		INSERT OR IGNORE INTO users (username, password, is_admin, created_at)
		VALUES (?, ?, 1, ?)`, "admin", adminPasswordHash, now)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT OR IGNORE INTO boards (name, description, created_at)
		VALUES (?, ?, ?)`, "General", "General discussion board", now)
	return err
}
