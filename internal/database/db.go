package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// The user table backs the authenticated admin surface only. Download
// sessions are deliberately not persisted here: their lifecycle lives in the
// in-memory session store.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'admin',
	active BOOLEAN NOT NULL DEFAULT 1,
	last_login TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// Initialize creates and initializes the database connection.
func Initialize(databaseURL string) (*sql.DB, error) {
	if databaseURL != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(databaseURL), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", databaseURL+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %v", err)
	}

	log.Printf("Database initialized at: %s", databaseURL)
	return db, nil
}
