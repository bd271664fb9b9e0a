// Package db opens the SQL database backing the member directory.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gourdian25/memberjwt/internal/logger"

	// Database drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DatabaseDriver names a registered database/sql driver.
type DatabaseDriver string

// Supported drivers
const (
	SQLite     DatabaseDriver = "sqlite3"
	PostgreSQL DatabaseDriver = "postgres"
)

// DetectDriver determines the database driver from the connection string.
// Anything that does not look like PostgreSQL is treated as a SQLite path.
func DetectDriver(connectionString string) DatabaseDriver {
	connectionString = strings.ToLower(connectionString)

	switch {
	case strings.HasPrefix(connectionString, "postgres://"),
		strings.HasPrefix(connectionString, "postgresql://"),
		strings.Contains(connectionString, "host="):
		return PostgreSQL
	default:
		return SQLite
	}
}

// Open opens and pings the database at connectionString.
func Open(ctx context.Context, connectionString string) (*sql.DB, DatabaseDriver, error) {
	if connectionString == "" {
		return nil, "", fmt.Errorf("database URL is required")
	}

	driver := DetectDriver(connectionString)
	maxOpen, maxIdle, maxLifetime := 10, 2, 5*time.Minute
	if driver == SQLite {
		// SQLite serializes writers; a single connection also keeps
		// ":memory:" databases from splitting across connections.
		maxOpen, maxIdle, maxLifetime = 1, 1, 0
	}

	logger.Info("Opening database connection",
		"driver", string(driver),
		"maxOpenConns", maxOpen)

	db, err := sql.Open(string(driver), connectionString)
	if err != nil {
		return nil, driver, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, driver, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, driver, nil
}
