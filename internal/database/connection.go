package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Connect opens the store and makes sure the schema exists
func Connect(driver, dsn string) (*sqlx.DB, error) {
	if driver == DriverSQLite && !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates the three relations if they don't exist
func initializeSchema(db *sqlx.DB) error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == DriverPostgres {
		pk = "SERIAL PRIMARY KEY"
	}

	statements := []struct {
		name  string
		query string
	}{
		{"questions", `
			CREATE TABLE IF NOT EXISTS questions (
				id ` + pk + `,
				chapter TEXT NOT NULL,
				q_type TEXT NOT NULL,
				text TEXT NOT NULL,
				options TEXT NOT NULL DEFAULT '',
				answer TEXT NOT NULL
			)`},
		{"wrong_log", `
			CREATE TABLE IF NOT EXISTS wrong_log (
				id ` + pk + `,
				user_id TEXT NOT NULL,
				question_id INTEGER NOT NULL REFERENCES questions(id),
				wrong_count INTEGER NOT NULL DEFAULT 0,
				last_wrong_ts TIMESTAMP NOT NULL,
				UNIQUE(user_id, question_id)
			)`},
		{"answer_log", `
			CREATE TABLE IF NOT EXISTS answer_log (
				id ` + pk + `,
				user_id TEXT NOT NULL,
				question_id INTEGER NOT NULL REFERENCES questions(id),
				is_correct BOOLEAN NOT NULL,
				answer_text TEXT NOT NULL,
				ts TIMESTAMP NOT NULL
			)`},
		{"answer_log index", `CREATE INDEX IF NOT EXISTS idx_answer_log_user ON answer_log(user_id, question_id)`},
	}

	for _, st := range statements {
		if _, err := db.Exec(st.query); err != nil {
			return fmt.Errorf("failed to create %s: %w", st.name, err)
		}
	}
	return nil
}
