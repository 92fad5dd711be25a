package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flexattrs/pkg/config"
	"github.com/doodlesbykumbi/flexattrs/pkg/logger"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the companion tables of every configured model",
	Long: `Create the companion tables of every configured model.

Tables and owner indexes that already exist are left untouched.

Example:
  flexctl migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Get()
		database, err := connect(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
		if err := migrateCompanions(database, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migrations complete")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func migrateCompanions(database *gorm.DB, cfg *config.FlexConfig) error {
	names := cfg.ModelNames()
	if len(names) == 0 {
		fmt.Println("No models configured - nothing to migrate")
		return nil
	}

	return database.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			companion, err := companionFor(cfg, name)
			if err != nil {
				return err
			}
			if err := companion.Migrate(tx); err != nil {
				return err
			}
			logger.Logger.Infow("companion table ready",
				logger.FieldModel, name,
				logger.FieldTable, companion.Table,
			)
		}
		return nil
	})
}
