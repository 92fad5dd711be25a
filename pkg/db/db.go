package db

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var)
	URL string
	// LogLevel enables SQL query logging when set to "debug"
	// (defaults to FLEX_LOG_LEVEL env var)
	LogLevel string
}

// Connect establishes a database connection.
// If no URL is provided, it reads from DATABASE_URL environment variable.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = URL()
	}
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	level := cfg.LogLevel
	if level == "" {
		level = os.Getenv("FLEX_LOG_LEVEL")
	}

	db, err := gorm.Open(Dialector(dbURL), &gorm.Config{
		Logger: logger.Default.LogMode(LogMode(level)),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return db, nil
}

// Dialector picks the GORM dialector for a connection URL: postgres URLs
// and key/value DSNs go to PostgreSQL, sqlite: URLs and bare file paths
// go to SQLite.
func Dialector(dbURL string) gorm.Dialector {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"),
		strings.Contains(dbURL, "host="):
		return postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		})
	case strings.HasPrefix(dbURL, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dbURL, "sqlite://"))
	case strings.HasPrefix(dbURL, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(dbURL, "sqlite:"))
	default:
		return sqlite.Open(dbURL)
	}
}

// LogMode maps a log level name to GORM's SQL logging mode. Only debug
// logs every statement.
func LogMode(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}
