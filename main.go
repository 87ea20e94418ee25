package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-slots/cmd"
	"github.com/mattsolo1/grove-slots/cmd/config"
)

var app *cmd.App

func main() {
	rootCmd := &cobra.Command{
		Use:          "slots",
		Short:        "Group, fold and browse record collections",
		SilenceUsage: true,
	}
	config.AddGlobalFlags(rootCmd)
	cobra.OnInitialize(config.InitConfig)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := cfg.NewLogger()
		logger.WithField("data_dir", cfg.DataDir).Debug("configuration loaded")
		app = &cmd.App{Config: cfg, Log: logger}
		return nil
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewShowCmd(&app))
	rootCmd.AddCommand(cmd.NewTuiCmd(&app))
	rootCmd.AddCommand(cmd.NewImportCmd(&app))
	rootCmd.AddCommand(cmd.NewStatsCmd(&app))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
