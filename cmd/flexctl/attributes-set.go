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

// attributesSetCmd represents the attributes set command
var attributesSetCmd = &cobra.Command{
	Use:   "set MODEL OWNER_ID NAME=VALUE...",
	Short: "Replace the flex attributes of an owner",
	Long: `Replace the flex attributes of an owner.

The given attributes become the owner's complete attribute set: every
stored attribute of the owner (and version) is deleted and the given
ones are inserted, in one transaction.

Example:
  flexctl attributes set Paris 1 has_brie_and_cheese=true is_smug=false
  flexctl attributes set Document 7 status=published --version 3`,
	Args: cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		version, _ := cmd.Flags().GetInt64("version")

		if err := runAttributesSet(args[0], args[1], args[2:], version); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set attributes: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	attributesCmd.AddCommand(attributesSetCmd)
}

func runAttributesSet(model, ownerID string, rawPairs []string, version int64) error {
	pairs, err := parsePairs(rawPairs)
	if err != nil {
		return err
	}

	cfg := config.Get()
	companion, err := companionFor(cfg, model)
	if err != nil {
		return err
	}
	database, err := connect(cfg)
	if err != nil {
		return err
	}

	scope := versionScope(parseOwnerID(ownerID), version)
	if err := setAttributes(database, companion, scope, pairs); err != nil {
		return err
	}
	fmt.Printf("Stored %d attribute(s) for %s %s\n", len(pairs), model, ownerID)
	return nil
}

func setAttributes(database *gorm.DB, companion flex.Companion, scope flex.Scope, pairs []flex.Pair) error {
	return database.Transaction(func(tx *gorm.DB) error {
		if _, err := companion.Replace(tx, scope, pairs, true); err != nil {
			return err
		}
		logger.Logger.Infow("flex attributes replaced",
			logger.FieldTable, companion.Table,
			logger.FieldOwnerID, scope.OwnerID,
			logger.FieldVersion, scope.Version,
			logger.FieldCount, len(pairs),
		)
		return nil
	})
}
