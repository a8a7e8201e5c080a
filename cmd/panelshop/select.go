package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/r3b0rn/panelshop/internal/config"
	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/driver"
)

func newSelectCmd() *cobra.Command {
	var (
		settingsPath  string
		categoriesCSV string
		peopleCSV     string
		outCSV        string
		k             int
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Draw a stratified panel (or lottery list of panels) from a people pool",
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

			out, err := driver.Run(context.Background(), agents, cats, k, *settings)
			for _, line := range collectLog(out) {
				fmt.Fprintln(cmd.ErrOrStderr(), line)
			}
			if err != nil {
				return err
			}

			return writeSelection(outCSV, settings.IDColumn, out.Panels)
		},
	}

	cmd.Flags().StringVar(&settingsPath, "settings", "panelshop/settings.toml", "path to the TOML settings file")
	cmd.Flags().StringVar(&categoriesCSV, "categories", "categories.csv", "path to the categories CSV file")
	cmd.Flags().StringVar(&peopleCSV, "people", "people.csv", "path to the people CSV file")
	cmd.Flags().StringVar(&outCSV, "out", "selected.csv", "path to write the selected panel(s) to")
	cmd.Flags().IntVar(&k, "panel-size", 0, "target panel size (required)")
	_ = cmd.MarkFlagRequired("panel-size")

	return cmd
}

func collectLog(out *driver.Output) []string {
	if out == nil || out.Log == nil {
		return nil
	}
	return out.Log.Lines
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}
	return all[0], all[1:], nil
}

func writeSelection(path, idColumn string, panels []core.Panel) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"panel", idColumn}); err != nil {
		return err
	}
	for i, p := range panels {
		for _, id := range p.Agents {
			if err := w.Write([]string{fmt.Sprint(i), string(id)}); err != nil {
				return err
			}
		}
	}
	return nil
}
