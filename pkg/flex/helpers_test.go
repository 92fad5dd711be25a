package flex

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Paris has no restrictions: any non-column name is a flex attribute.
type Paris struct {
	ID         uint `gorm:"primaryKey"`
	Name       string
	Attributes `gorm:"-"`
}

func (Paris) TableName() string { return "paris" }

func (p *Paris) Greeting(prefix string) string {
	return prefix + " " + p.Name
}

func (p *Paris) Describe(sep string, tags ...string) string {
	return strings.Join(append([]string{p.Name}, tags...), sep)
}

func (p *Paris) Rename(name string) error {
	if name == "" {
		return errEmptyName
	}
	p.Name = name
	return nil
}

var errEmptyName = errors.New("name must not be empty")

// Document keeps one attribute set per version.
type Document struct {
	ID         uint `gorm:"primaryKey"`
	Version    int64
	Title      string
	Attributes `gorm:"-"`
}

// Recipe is used with an allow-list.
type Recipe struct {
	ID         uint `gorm:"primaryKey"`
	Title      string
	Attributes `gorm:"-"`
}

// Cheese enumerates its own flex fields.
type Cheese struct {
	ID         uint `gorm:"primaryKey"`
	Name       string
	Attributes `gorm:"-"`
}

func (Cheese) FlexAttributeFields() []string {
	return []string{"milk", "age"}
}

// Wine classifies with its own rule.
type Wine struct {
	ID         uint `gorm:"primaryKey"`
	Name       string
	Attributes `gorm:"-"`
}

func (Wine) FlexAttribute(name string) bool {
	return strings.HasPrefix(name, "tasting_")
}

// Plain does not embed Attributes.
type Plain struct {
	ID uint `gorm:"primaryKey"`
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "flex.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// setupSQLite migrates model and its companion table into a fresh database
// and enables flex attributes on a fresh registry.
func setupSQLite(t *testing.T, model Owner, opts Options) (*gorm.DB, *Config) {
	t.Helper()

	db := newSQLiteDB(t)
	require.NoError(t, db.AutoMigrate(model))

	cfg, err := NewRegistry().Enable(db, model, opts)
	require.NoError(t, err)
	require.NoError(t, cfg.Companion.Migrate(db))
	return db, cfg
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 sqlDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		},
	)
	require.NoError(t, err)
	return db, mock
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}
