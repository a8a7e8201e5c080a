package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r3b0rn/panelshop/internal/config"
)

func newInitConfigCmd() *cobra.Command {
	var settingsPath string

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a default settings.toml if one does not already exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(settingsPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "settings file ready at", settingsPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&settingsPath, "settings", "panelshop/settings.toml", "path to write the default TOML settings file to")
	return cmd
}
