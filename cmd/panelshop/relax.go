package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r3b0rn/panelshop/internal/config"
	"github.com/r3b0rn/panelshop/internal/household"
	"github.com/r3b0rn/panelshop/internal/ilp"
	"github.com/r3b0rn/panelshop/internal/relax"
)

func newRelaxCmd() *cobra.Command {
	var (
		settingsPath  string
		categoriesCSV string
		peopleCSV     string
		k             int
	)

	cmd := &cobra.Command{
		Use:   "relax",
		Short: "Report the minimal quota relaxation needed to make the pool feasible",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(settingsPath)
			if err != nil {
				return err
			}

			catHeader, catRows, err := readCSV(categoriesCSV)
			if err != nil {
				return fmt.Errorf("reading categories file: %w", err)
			}
			cats, err := config.ParseCategories(catHeader, catRows)
			if err != nil {
				return err
			}

			peopleHeader, peopleRows, err := readCSV(peopleCSV)
			if err != nil {
				return fmt.Errorf("reading people file: %w", err)
			}
			agents, err := config.ParsePeople(peopleHeader, peopleRows, cats, settings)
			if err != nil {
				return err
			}

			var groups *household.Groups
			if settings.CheckSameAddress {
				groups = household.Build(agents, settings.CheckSameAddressColumns)
			}

			ai := ilp.NewAgentIndex(agents)
			solver := ilp.GonumSolver{}
			result, err := (relax.Relaxer{Solver: solver}).Relax(context.Background(), ai, cats, k, groups, nil)
			if err != nil {
				return err
			}

			for _, diff := range result.Diffs {
				fmt.Fprintln(cmd.OutOrStdout(), diff)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mean slack=%.3f stddev slack=%.3f\n", result.MeanSlack, result.StdDevSlack)
			return nil
		},
	}

	cmd.Flags().StringVar(&settingsPath, "settings", "panelshop/settings.toml", "path to the TOML settings file")
	cmd.Flags().StringVar(&categoriesCSV, "categories", "categories.csv", "path to the categories CSV file")
	cmd.Flags().StringVar(&peopleCSV, "people", "people.csv", "path to the people CSV file")
	cmd.Flags().IntVar(&k, "panel-size", 0, "target panel size (required)")
	_ = cmd.MarkFlagRequired("panel-size")

	return cmd
}
