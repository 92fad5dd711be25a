package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var configurationCmd = &cobra.Command{
	Use:   "configuration",
	Short: "Inspect the settings and model options flexctl works with",
	Long: `Inspect the settings flexctl reads from flex.yml (FLEX_CONFIG_PATH,
default /etc/flex), .env and the environment, and the companion
options configured per model.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Help()
		return errors.New("configuration requires a subcommand: show")
	},
}

func init() {
	rootCmd.AddCommand(configurationCmd)
}
