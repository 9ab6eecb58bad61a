package main

import (
	"fmt"
	"os"

	"github.com/mattsolo1/grove-core/cli"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-jupyter/cmd"
	"github.com/mattsolo1/grove-jupyter/cmd/config"
	"github.com/mattsolo1/grove-jupyter/pkg/service"
)

var svc *service.Service

func main() {
	rootCmd := cli.NewStandardCommand(
		"jx",
		"Browse and edit files and notebooks on a Jupyter server",
	)
	config.AddGlobalFlags(rootCmd)
	cobra.OnInitialize(config.InitConfig)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand
		if !cmd.NeedsService(c) {
			return nil
		}
		var err error
		svc, err = config.InitService()
		if err != nil {
			return fmt.Errorf("failed to initialize service: %w", err)
		}
		return nil
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewListCmd(&svc))
	rootCmd.AddCommand(cmd.NewCatCmd(&svc))
	rootCmd.AddCommand(cmd.NewEditCmd(&svc))
	rootCmd.AddCommand(cmd.NewPutCmd(&svc))
	rootCmd.AddCommand(cmd.NewInfoCmd(&svc))
	rootCmd.AddCommand(cmd.NewTuiCmd(&svc))
	rootCmd.AddCommand(cmd.NewHistoryCmd())
	rootCmd.AddCommand(cmd.NewServersCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	err := rootCmd.Execute()
	if svc != nil {
		svc.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}
