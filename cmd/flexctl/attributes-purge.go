package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flexattrs/pkg/config"
	"github.com/doodlesbykumbi/flexattrs/pkg/flex"
	"github.com/doodlesbykumbi/flexattrs/pkg/logger"
)

// attributesPurgeCmd represents the attributes purge command
var attributesPurgeCmd = &cobra.Command{
	Use:   "purge MODEL OWNER_ID",
	Short: "Delete the flex attributes of an owner",
	Long: `Delete the flex attributes of an owner.

For versioned models only the given --version is purged; without it every
version of the owner is.

Example:
  flexctl attributes purge Paris 1
  flexctl attributes purge Document 7 --version 3`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		version, _ := cmd.Flags().GetInt64("version")

		if err := runAttributesPurge(args[0], args[1], version); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to purge attributes: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	attributesCmd.AddCommand(attributesPurgeCmd)
}

func runAttributesPurge(model, ownerID string, version int64) error {
	cfg := config.Get()
	companion, err := companionFor(cfg, model)
	if err != nil {
		return err
	}
	database, err := connect(cfg)
	if err != nil {
		return err
	}

	n, err := purgeAttributes(database, companion, versionScope(parseOwnerID(ownerID), version))
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d attribute(s) of %s %s\n", n, model, ownerID)
	return nil
}

func purgeAttributes(database *gorm.DB, companion flex.Companion, scope flex.Scope) (int64, error) {
	var n int64
	err := database.Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = companion.DeleteScope(tx, scope)
		return err
	})
	if err != nil {
		return 0, err
	}
	logger.Logger.Infow("flex attributes purged",
		logger.FieldTable, companion.Table,
		logger.FieldOwnerID, scope.OwnerID,
		logger.FieldVersion, scope.Version,
		logger.FieldCount, n,
	)
	return n, nil
}
