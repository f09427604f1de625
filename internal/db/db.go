// Package db provides SQLite database initialization and migration for the
// AskPalestine question/answer corpus.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens a SQLite database connection at dbPath, enables WAL mode and
// foreign keys, and creates all required tables idempotently.
func InitDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("failed to execute %s: %w", p, err)
		}
	}
	return nil
}

func createTables(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS voices (
			id                    TEXT PRIMARY KEY,
			name                  TEXT NOT NULL,
			bio                   TEXT NOT NULL,
			photo                 TEXT,
			professional_identity TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id             TEXT PRIMARY KEY,
			question       TEXT NOT NULL,
			question_forms TEXT NOT NULL,
			embedding      TEXT,
			created_at     TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS answers (
			id          TEXT PRIMARY KEY,
			question_id TEXT NOT NULL,
			author_id   TEXT NOT NULL,
			content     TEXT NOT NULL,
			source      TEXT,
			source_type TEXT,
			source_name TEXT,
			created_at  TEXT,
			FOREIGN KEY (question_id) REFERENCES questions(id) ON DELETE CASCADE,
			FOREIGN KEY (author_id) REFERENCES voices(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS genocidal_voices (
			id     TEXT PRIMARY KEY,
			name   TEXT NOT NULL,
			title  TEXT NOT NULL,
			quotes TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS gems (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			type        TEXT NOT NULL,
			description TEXT,
			photo       TEXT,
			sources     TEXT
		)`,
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, ddl := range tables {
		if _, err := tx.Exec(ddl); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return tx.Commit()
}
