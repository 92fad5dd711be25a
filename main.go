package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flexattrs/pkg/config"
	"github.com/doodlesbykumbi/flexattrs/pkg/db"
	"github.com/doodlesbykumbi/flexattrs/pkg/flex"
	"github.com/doodlesbykumbi/flexattrs/pkg/logger"
)

// City is the demo owner model. Any name that is not a column is stored
// as a flex attribute.
type City struct {
	ID              uint `gorm:"primaryKey"`
	Name            string
	flex.Attributes `gorm:"-"`
}

func main() {
	cfg := config.Get()
	if err := logger.Initialize(cfg.LogLevel, cfg.LogJSON); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Cleanup()

	dbURL := cfg.DatabaseURL
	if dbURL == "" {
		dir, err := os.MkdirTemp("", "flexattrs")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		dbURL = "sqlite:" + filepath.Join(dir, "demo.db")
	}

	database, err := db.Connect(db.Config{URL: dbURL, LogLevel: cfg.LogLevel})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(os.Stdout, database, flex.NewRegistry()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run walks through the life of a city's flex attributes: write, save,
// reload, replace and purge.
func run(w io.Writer, database *gorm.DB, registry *flex.Registry) error {
	if err := database.AutoMigrate(&City{}); err != nil {
		return errors.Wrap(err, "failed to migrate cities")
	}
	cfg, err := registry.Enable(database, &City{}, flex.Options{})
	if err != nil {
		return err
	}
	if err := cfg.Companion.Migrate(database); err != nil {
		return err
	}

	paris := City{Name: "Paris"}
	if err := cfg.Write(&paris, "has_brie_and_cheese", true); err != nil {
		return err
	}
	if err := database.Create(&paris).Error; err != nil {
		return err
	}

	var reloaded City
	if err := database.First(&reloaded, paris.ID).Error; err != nil {
		return err
	}
	v, err := cfg.Read(&reloaded, "has_brie_and_cheese")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s has_brie_and_cheese = %v\n", reloaded.Name, v)

	if _, err := cfg.Call(&reloaded, "is_smug=", false); err != nil {
		return err
	}
	if err := database.Save(&reloaded).Error; err != nil {
		return err
	}
	records, err := cfg.Records(&reloaded)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "after replacing: %d attribute(s)\n", len(records))
	for _, r := range records {
		fmt.Fprintf(w, "  %s = %s\n", r.Name, r.Value)
	}

	cfg.MarkForPurge(&reloaded)
	if err := database.Save(&reloaded).Error; err != nil {
		return err
	}
	records, err = cfg.Records(&reloaded)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "after purge: %d attribute(s)\n", len(records))
	return nil
}
