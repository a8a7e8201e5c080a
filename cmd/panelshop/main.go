package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "panelshop:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "panelshop",
		Short:         "Stratified random panel selection via fair lottery over feasible panels",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newSelectCmd())
	cmd.AddCommand(newRelaxCmd())
	cmd.AddCommand(newInitConfigCmd())
	return cmd
}
