package benchmark

import (
	"fmt"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/flexattrs/pkg/flex"
)

type Paris struct {
	ID              uint `gorm:"primaryKey"`
	Name            string
	flex.Attributes `gorm:"-"`
}

func (Paris) TableName() string { return "paris" }

func setup(b *testing.B) (*gorm.DB, *flex.Config) {
	b.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(b.TempDir(), "bench.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		b.Fatal(err)
	}
	if err := db.AutoMigrate(&Paris{}); err != nil {
		b.Fatal(err)
	}
	cfg, err := flex.NewRegistry().Enable(db, &Paris{}, flex.Options{})
	if err != nil {
		b.Fatal(err)
	}
	if err := cfg.Companion.Migrate(db); err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db, cfg
}

func BenchmarkFlexAttributes(b *testing.B) {
	db, cfg := setup(b)

	paris := Paris{Name: "Paris"}
	for i := 0; i < 10; i++ {
		_ = cfg.Write(&paris, fmt.Sprintf("attr_%d", i), i)
	}
	if err := db.Create(&paris).Error; err != nil {
		b.Fatal(err)
	}

	b.Run("Write pending", func(b *testing.B) {
		owner := Paris{}

		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = cfg.Write(&owner, "mood", i)
		}
	})

	b.Run("Read cached", func(b *testing.B) {
		_, _ = cfg.Read(&paris, "attr_5")

		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_, _ = cfg.Read(&paris, "attr_5")
		}
	})

	b.Run("Save rebuilding 10 attributes", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for j := 0; j < 10; j++ {
				_ = cfg.Write(&paris, fmt.Sprintf("attr_%d", j), i)
			}
			if err := db.Save(&paris).Error; err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Save without flex writes", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			if err := db.Save(&paris).Error; err != nil {
				b.Fatal(err)
			}
		}
	})
}
