package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// attributesCmd represents the attributes command
var attributesCmd = &cobra.Command{
	Use:   "attributes",
	Short: "Manage the flex attributes of an owner",
	Long:  `List, replace or purge the flex attributes stored for one owner row.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'attributes' requires a subcommand (list, set, purge)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(attributesCmd)
	attributesCmd.PersistentFlags().Int64("version", -1, "Owner version (versioned models only)")
}
