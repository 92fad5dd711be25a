package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"postgres://u:p@localhost:5432/app?sslmode=disable", "postgres"},
		{"postgresql://localhost/app", "postgres"},
		{"host=localhost user=app dbname=app", "postgres"},
		{"sqlite:/tmp/app.db", "sqlite"},
		{"sqlite:///tmp/app.db", "sqlite"},
		{"/tmp/app.db", "sqlite"},
		{"file::memory:?cache=shared", "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, Dialector(tt.url).Name())
		})
	}
}

func TestLogMode(t *testing.T) {
	assert.Equal(t, logger.Info, LogMode("debug"))
	assert.Equal(t, logger.Info, LogMode("DEBUG"))
	assert.Equal(t, logger.Warn, LogMode("warn"))
	assert.Equal(t, logger.Error, LogMode("error"))
	assert.Equal(t, logger.Silent, LogMode("info"))
	assert.Equal(t, logger.Silent, LogMode(""))
}

func TestConnectRequiresURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Connect(Config{})
	assert.Error(t, err)
}

func TestConnectSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	t.Setenv("DATABASE_URL", "sqlite:"+path)

	db, err := Connect(Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	assert.NoError(t, db.Exec("CREATE TABLE t (id INTEGER)").Error)
	assert.FileExists(t, path)
}
