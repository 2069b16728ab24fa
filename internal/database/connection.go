package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported DB_TYPE values
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Connect opens a SQL connection for driver ("sqlite" or "postgres") and
// creates the schema if it doesn't exist
func Connect(driver, dsn string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = filepath.Join("data", "skillbuilder.db")
		}
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err = sqlx.Connect("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres")
		}
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// schema is valid for both SQLite and PostgreSQL. IDs are assigned by the
// store as max(id) + 1, so no autoincrement columns are used.
var schema = []struct {
	table string
	ddl   string
}{
	{"domains", `
		CREATE TABLE IF NOT EXISTS domains (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			icon TEXT
		)`},
	{"mastery_levels", `
		CREATE TABLE IF NOT EXISTS mastery_levels (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT
		)`},
	{"modules", `
		CREATE TABLE IF NOT EXISTS modules (
			id INTEGER PRIMARY KEY,
			domain_id INTEGER NOT NULL REFERENCES domains(id),
			mastery_level_id INTEGER NOT NULL REFERENCES mastery_levels(id),
			title TEXT NOT NULL,
			description TEXT,
			order_index INTEGER NOT NULL DEFAULT 0
		)`},
	{"quizzes", `
		CREATE TABLE IF NOT EXISTS quizzes (
			id INTEGER PRIMARY KEY,
			module_id INTEGER NOT NULL REFERENCES modules(id),
			title TEXT NOT NULL
		)`},
	{"quiz_questions", `
		CREATE TABLE IF NOT EXISTS quiz_questions (
			id INTEGER PRIMARY KEY,
			quiz_id INTEGER NOT NULL REFERENCES quizzes(id),
			question TEXT NOT NULL,
			order_index INTEGER NOT NULL DEFAULT 0
		)`},
	{"quiz_answers", `
		CREATE TABLE IF NOT EXISTS quiz_answers (
			id INTEGER PRIMARY KEY,
			question_id INTEGER NOT NULL REFERENCES quiz_questions(id),
			answer TEXT NOT NULL,
			is_correct BOOLEAN NOT NULL DEFAULT FALSE
		)`},
	{"user_progress", `
		CREATE TABLE IF NOT EXISTS user_progress (
			id INTEGER PRIMARY KEY,
			user_id TEXT NOT NULL,
			module_id INTEGER NOT NULL,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			completed_at TIMESTAMP,
			UNIQUE(user_id, module_id)
		)`},
	{"user_quiz_results", `
		CREATE TABLE IF NOT EXISTS user_quiz_results (
			id INTEGER PRIMARY KEY,
			user_id TEXT NOT NULL,
			quiz_id INTEGER NOT NULL,
			score INTEGER NOT NULL,
			completed_at TIMESTAMP NOT NULL
		)`},
	{"forum_posts", `
		CREATE TABLE IF NOT EXISTS forum_posts (
			id INTEGER PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			domain_id INTEGER,
			upvotes INTEGER NOT NULL DEFAULT 0,
			downvotes INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
	{"forum_comments", `
		CREATE TABLE IF NOT EXISTS forum_comments (
			id INTEGER PRIMARY KEY,
			post_id INTEGER NOT NULL REFERENCES forum_posts(id),
			user_id TEXT NOT NULL,
			content TEXT NOT NULL,
			upvotes INTEGER NOT NULL DEFAULT 0,
			downvotes INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`},
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	for _, t := range schema {
		if _, err := db.Exec(t.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.table, err)
		}
	}
	return nil
}
