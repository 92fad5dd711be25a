package integration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/flexattrs/pkg/db"
	"github.com/doodlesbykumbi/flexattrs/pkg/flex"
	"github.com/doodlesbykumbi/flexattrs/pkg/logger"
)

// City stores anything as a flex attribute.
type City struct {
	ID              uint `gorm:"primaryKey"`
	Name            string
	flex.Attributes `gorm:"-"`
}

// Dish only accepts its allow-listed flex attributes.
type Dish struct {
	ID              uint `gorm:"primaryKey"`
	Name            string
	flex.Attributes `gorm:"-"`
}

// Article keeps one attribute set per version.
type Article struct {
	ID              uint `gorm:"primaryKey"`
	Version         int64
	Title           string
	flex.Attributes `gorm:"-"`
}

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	DatabaseURL string
	Configs     map[string]*flex.Config
}

// NewTestContext starts a PostgreSQL testcontainer, creates the owner and
// companion tables and enables flex attributes on the test models.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("flex_test"),
		tcpostgres.WithUsername("flex"),
		tcpostgres.WithPassword("flex"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	connStr := fmt.Sprintf("postgres://flex:flex@%s:%s/flex_test?sslmode=disable", host, port.Port())

	database, err := db.Connect(db.Config{URL: connStr, LogLevel: "error"})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}
	rawDB, err := database.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	configs, err := setupModels(database)
	if err != nil {
		_ = rawDB.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	return &TestContext{
		DB:          database,
		RawDB:       rawDB,
		Container:   pgContainer,
		DatabaseURL: connStr,
		Configs:     configs,
	}, nil
}

func setupModels(database *gorm.DB) (map[string]*flex.Config, error) {
	if err := database.AutoMigrate(&City{}, &Dish{}, &Article{}); err != nil {
		return nil, fmt.Errorf("failed to migrate owner tables: %w", err)
	}

	registry := flex.NewRegistry()
	models := []struct {
		name  string
		model flex.Owner
		opts  flex.Options
	}{
		{"City", &City{}, flex.Options{LockOwner: true}},
		{"Dish", &Dish{}, flex.Options{Fields: []string{"cuisine", "spicy"}}},
		{"Article", &Article{}, flex.Options{Versioned: true}},
	}

	configs := make(map[string]*flex.Config, len(models))
	for _, m := range models {
		cfg, err := registry.Enable(database, m.model, m.opts)
		if err != nil {
			return nil, fmt.Errorf("failed to enable %s: %w", m.name, err)
		}
		if err := cfg.Companion.Migrate(database); err != nil {
			return nil, err
		}
		configs[m.name] = cfg
		logger.Logger.Infow("integration model ready",
			logger.FieldModel, m.name,
			logger.FieldTable, cfg.Companion.Table,
		)
	}
	return configs, nil
}

// Reset empties every owner and companion table between scenarios.
func (tc *TestContext) Reset() error {
	tables := []string{"cities", "dishes", "articles"}
	for _, cfg := range tc.Configs {
		tables = append(tables, cfg.Companion.Table)
	}
	for _, table := range tables {
		if err := tc.DB.Exec("TRUNCATE TABLE ? RESTART IDENTITY", clause.Table{Name: table}).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
