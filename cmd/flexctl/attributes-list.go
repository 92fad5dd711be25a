package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/flexattrs/pkg/config"
	"github.com/doodlesbykumbi/flexattrs/pkg/flex"
)

// attributesListCmd represents the attributes list command
var attributesListCmd = &cobra.Command{
	Use:   "list MODEL OWNER_ID",
	Short: "List the stored flex attributes of an owner",
	Long: `List the stored flex attributes of an owner.

Versioned models list every version unless --version is given.

Example:
  flexctl attributes list Paris 1
  flexctl attributes list Document 7 --version 3 --output json`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		version, _ := cmd.Flags().GetInt64("version")

		if err := runAttributesList(os.Stdout, args[0], args[1], version, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list attributes: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	attributesCmd.AddCommand(attributesListCmd)
	attributesListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func runAttributesList(w io.Writer, model, ownerID string, version int64, output string) error {
	cfg := config.Get()
	companion, err := companionFor(cfg, model)
	if err != nil {
		return err
	}
	database, err := connect(cfg)
	if err != nil {
		return err
	}
	return listAttributes(w, database, companion, versionScope(parseOwnerID(ownerID), version), output)
}

func listAttributes(w io.Writer, tx *gorm.DB, companion flex.Companion, scope flex.Scope, output string) error {
	records, err := companion.Load(tx, scope.OwnerID)
	if err != nil {
		return err
	}
	records = filterRecords(records, scope.Version)

	if output == "json" {
		if records == nil {
			records = []flex.Record{}
		}
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if companion.Versioned {
		fmt.Fprintln(tw, "VERSION\tNAME\tVALUE")
	} else {
		fmt.Fprintln(tw, "NAME\tVALUE")
	}
	for _, r := range records {
		if companion.Versioned {
			var v int64
			if r.Version != nil {
				v = *r.Version
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", v, r.Name, r.Value)
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", r.Name, r.Value)
		}
	}
	return tw.Flush()
}
