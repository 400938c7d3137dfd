package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Supported DB_TYPE values
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// driverNames maps DB_TYPE to the registered database/sql driver
var driverNames = map[string]string{
	TypeSQLite:   "sqlite3",
	TypePostgres: "postgres",
}

// Connect opens the database and makes sure the schema exists
func Connect(ctx context.Context, dbType, dsn string) (*sqlx.DB, error) {
	driver, ok := driverNames[dbType]
	if !ok {
		return nil, errors.Errorf("unsupported database type %q", dbType)
	}

	if dbType == TypeSQLite {
		if err := ensureDataDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if dbType == TypeSQLite {
		// SQLite doesn't support multiple writers; one connection also keeps :memory: databases alive
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)

		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "failed to enable foreign keys")
		}
	} else {
		db.SetMaxOpenConns(20)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	if err := initializeSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// ensureDataDir creates the directory of a file based SQLite DSN
func ensureDataDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(ctx context.Context, db *sqlx.DB) error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == driverNames[TypePostgres] {
		pk = "BIGSERIAL PRIMARY KEY"
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id {{pk}},
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL DEFAULT '',
				first_name TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL DEFAULT 'student',
				streak INTEGER NOT NULL DEFAULT 0,
				telegram_id BIGINT UNIQUE,
				notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
				notification_hour INTEGER NOT NULL DEFAULT 9,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
		{"topics", `
			CREATE TABLE IF NOT EXISTS topics (
				id {{pk}},
				name VARCHAR(32) NOT NULL UNIQUE,
				long_desc VARCHAR(255) NOT NULL DEFAULT '',
				short_desc VARCHAR(10) NOT NULL DEFAULT '',
				is_hidden BOOLEAN NOT NULL DEFAULT FALSE,
				available_from DATE NOT NULL DEFAULT CURRENT_DATE,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
		{"words", `
			CREATE TABLE IF NOT EXISTS words (
				id {{pk}},
				origin VARCHAR(100) NOT NULL UNIQUE,
				target VARCHAR(100) NOT NULL UNIQUE,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
		{"topic_words", `
			CREATE TABLE IF NOT EXISTS topic_words (
				topic_id BIGINT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
				word_id BIGINT NOT NULL REFERENCES words(id) ON DELETE CASCADE,
				PRIMARY KEY (topic_id, word_id)
			)`},
		{"word_scores", `
			CREATE TABLE IF NOT EXISTS word_scores (
				id {{pk}},
				word_id BIGINT NOT NULL REFERENCES words(id) ON DELETE CASCADE,
				student_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				consecutive_correct INTEGER NOT NULL DEFAULT 0,
				times_seen INTEGER NOT NULL DEFAULT 0,
				times_correct INTEGER NOT NULL DEFAULT 0,
				next_review DATE NOT NULL DEFAULT CURRENT_DATE,
				UNIQUE (word_id, student_id)
			)`},
		{"quiz_results", `
			CREATE TABLE IF NOT EXISTS quiz_results (
				id {{pk}},
				student_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				topic_id BIGINT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
				date_created DATE NOT NULL DEFAULT CURRENT_DATE,
				correct_answers INTEGER NOT NULL DEFAULT 0,
				incorrect_answers INTEGER NOT NULL DEFAULT 0,
				points INTEGER NOT NULL DEFAULT 0
			)`},
	}

	for _, table := range tables {
		ddl := strings.ReplaceAll(table.ddl, "{{pk}}", pk)
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return errors.Wrapf(err, "failed to create %s table", table.name)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_topic_words_word ON topic_words(word_id)",
		"CREATE INDEX IF NOT EXISTS idx_word_scores_student_review ON word_scores(student_id, next_review)",
		"CREATE INDEX IF NOT EXISTS idx_quiz_results_student_date ON quiz_results(student_id, date_created)",
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return errors.Wrap(err, "failed to create index")
		}
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on success and rolling back on error or panic
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rollback failed: %v", rbErr)
		}
		return err
	}

	return errors.Wrap(tx.Commit(), "failed to commit transaction")
}

// IsUniqueViolation reports whether err was caused by a UNIQUE constraint
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// sqlDate formats a calendar day the way DATE columns are stored
func sqlDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
