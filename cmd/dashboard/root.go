package main

import (
	"github.com/spf13/cobra"

	"quant_dashboard/internal/platform/config"
	"quant_dashboard/internal/platform/logging"
)

func newRootCmd(cfg *config.ClientConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dashboard",
		Short:         "Headless crypto quant dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Setup(cfg.LogLevel, "")
		},
	}

	cmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "dashboard backend base URL")
	cmd.PersistentFlags().StringVar(&cfg.CataloguePath, "catalogue", cfg.CataloguePath, "catalogue YAML (default: embedded)")
	cmd.PersistentFlags().StringVar(&cfg.PrefsFile, "prefs", cfg.PrefsFile, "preference file for the language choice (default: in-memory)")
	cmd.PersistentFlags().StringVar(&cfg.PrefsRedisAddr, "prefs-redis", cfg.PrefsRedisAddr, "Redis address for shared preferences (overrides --prefs)")

	cmd.AddCommand(
		newLoadCmd(cfg),
		newLayoutCmd(cfg),
		newWatchCmd(cfg),
	)
	return cmd
}
