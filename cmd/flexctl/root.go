package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/flexattrs/pkg/config"
	"github.com/doodlesbykumbi/flexattrs/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "flexctl",
	Short: "Inspect and maintain flex attribute companion tables",
	Long: `flexctl works on the companion tables that store flex attributes.

Models and their companion options are read from flex.yml
(FLEX_CONFIG_PATH, default /etc/flex). The database comes from
DATABASE_URL.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		return logger.Initialize(cfg.LogLevel, cfg.LogJSON)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
