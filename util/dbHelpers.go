package util

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// OpenDB opens the configured database and verifies the connection. The
// sqlite driver gets the pragmas a single-process bot needs; postgres is
// wired for deployments that outgrow a file database.
func OpenDB(driver, dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	switch driver {
	case "sqlite":
		db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		if err = applyPragmas(db); err != nil {
			db.Close()
			return nil, err
		}
	case "postgres":
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("error applying pragma %q: %w", p, err)
		}
	}
	return nil
}

func ddlStringsSQLite() []string {
	sqlStrings := []string{}
	sqlStrings = append(sqlStrings,
		`CREATE TABLE IF NOT EXISTS users (
    user_id INTEGER PRIMARY KEY,
    full_name TEXT NOT NULL,
    role TEXT NOT NULL CHECK(role='student' OR role='admin') DEFAULT 'student',
    created_at INTEGER NOT NULL DEFAULT 0
)`,
		`CREATE TABLE IF NOT EXISTS topics (
    topic_id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT UNIQUE NOT NULL,
    is_available INTEGER NOT NULL DEFAULT 0,
    attempt_limit INTEGER DEFAULT 1
)`,
		`CREATE TABLE IF NOT EXISTS questions (
    question_id INTEGER PRIMARY KEY AUTOINCREMENT,
    topic_id INTEGER NOT NULL,
    text TEXT NOT NULL,
    option1 TEXT NOT NULL,
    option2 TEXT NOT NULL,
    option3 TEXT NOT NULL,
    option4 TEXT NOT NULL,
    correct_option INTEGER NOT NULL CHECK (correct_option BETWEEN 1 AND 4),
    FOREIGN KEY (topic_id) REFERENCES topics(topic_id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS attempts (
    attempt_id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    topic_id INTEGER NOT NULL,
    score INTEGER NOT NULL,
    max_score INTEGER NOT NULL,
    attempt_number INTEGER NOT NULL,
    timestamp INTEGER NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE,
    FOREIGN KEY (topic_id) REFERENCES topics(topic_id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS materials (
    material_id INTEGER PRIMARY KEY AUTOINCREMENT,
    topic_id INTEGER,
    type TEXT NOT NULL CHECK (type IN ('link', 'file', 'text')),
    content TEXT NOT NULL,
    title TEXT NOT NULL,
    FOREIGN KEY (topic_id) REFERENCES topics(topic_id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS messages (
    message_id INTEGER PRIMARY KEY AUTOINCREMENT,
    from_user_id INTEGER NOT NULL,
    to_user_id INTEGER,
    text TEXT NOT NULL,
    is_answered INTEGER NOT NULL DEFAULT 0,
    timestamp INTEGER NOT NULL,
    FOREIGN KEY (from_user_id) REFERENCES users(user_id) ON DELETE CASCADE
)`)
	return sqlStrings
}

func ddlStringsPostgres() []string {
	sqlStrings := []string{}
	sqlStrings = append(sqlStrings,
		`CREATE TABLE IF NOT EXISTS users (
    user_id BIGINT PRIMARY KEY,
    full_name TEXT NOT NULL,
    role TEXT NOT NULL CHECK(role='student' OR role='admin') DEFAULT 'student',
    created_at BIGINT NOT NULL DEFAULT 0
)`,
		`CREATE TABLE IF NOT EXISTS topics (
    topic_id BIGSERIAL PRIMARY KEY,
    title TEXT UNIQUE NOT NULL,
    is_available INTEGER NOT NULL DEFAULT 0,
    attempt_limit INTEGER DEFAULT 1
)`,
		`CREATE TABLE IF NOT EXISTS questions (
    question_id BIGSERIAL PRIMARY KEY,
    topic_id BIGINT NOT NULL,
    text TEXT NOT NULL,
    option1 TEXT NOT NULL,
    option2 TEXT NOT NULL,
    option3 TEXT NOT NULL,
    option4 TEXT NOT NULL,
    correct_option INTEGER NOT NULL CHECK (correct_option BETWEEN 1 AND 4),
    FOREIGN KEY (topic_id) REFERENCES topics(topic_id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS attempts (
    attempt_id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    topic_id BIGINT NOT NULL,
    score INTEGER NOT NULL,
    max_score INTEGER NOT NULL,
    attempt_number INTEGER NOT NULL,
    timestamp BIGINT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE,
    FOREIGN KEY (topic_id) REFERENCES topics(topic_id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS materials (
    material_id BIGSERIAL PRIMARY KEY,
    topic_id BIGINT,
    type TEXT NOT NULL CHECK (type IN ('link', 'file', 'text')),
    content TEXT NOT NULL,
    title TEXT NOT NULL,
    FOREIGN KEY (topic_id) REFERENCES topics(topic_id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS messages (
    message_id BIGSERIAL PRIMARY KEY,
    from_user_id BIGINT NOT NULL,
    to_user_id BIGINT,
    text TEXT NOT NULL,
    is_answered INTEGER NOT NULL DEFAULT 0,
    timestamp BIGINT NOT NULL,
    FOREIGN KEY (from_user_id) REFERENCES users(user_id) ON DELETE CASCADE
)`)
	return sqlStrings
}

// CreateTablesIfNotExists bootstraps the schema for the configured driver.
func CreateTablesIfNotExists(db *sql.DB, driver string) error {
	var sqlStrings []string
	if driver == "postgres" {
		sqlStrings = ddlStringsPostgres()
	} else {
		sqlStrings = ddlStringsSQLite()
	}
	for i, q := range sqlStrings {
		_, err := db.Exec(q)
		if err != nil {
			return fmt.Errorf("error creating table %d: %w", i, err)
		}
	}
	return nil
}
