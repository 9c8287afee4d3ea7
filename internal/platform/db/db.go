package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Open connects to the configured database. A postgres:// URL uses the pgx
// driver; anything else is treated as a SQLite file path.
func Open(databaseURL string) (*sql.DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		driver = "pgx"
	}

	conn, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open %s database: %w", driver, err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify %s connection: %w", driver, err)
	}

	return conn, nil
}
