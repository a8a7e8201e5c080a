package config

import (
	"strings"

	"github.com/r3b0rn/panelshop/internal/core"
)

// ParsePeople validates and converts raw people rows into core.Agent
// values. header/rows come from the CSV/spreadsheet collaborator
// (out of scope here); settings.IDColumn, every feature in cats, and
// every settings.ColumnsToKeep / CheckSameAddressColumns entry must be
// present in header (spec.md §6.1).
func ParsePeople(header []string, rows [][]string, cats *core.Categories, settings *Settings) ([]core.Agent, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := idx[name]; dup {
			return nil, &core.InputError{Msg: "duplicate column name in people header: " + name}
		}
		idx[name] = i
	}

	required := []string{settings.IDColumn}
	for feature := range cats.Values {
		required = append(required, feature)
	}
	required = append(required, settings.ColumnsToKeep...)
	required = append(required, settings.CheckSameAddressColumns...)
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, &core.InputError{Msg: "people header missing required column: " + col}
		}
	}

	kept := dedupe(append(append([]string{}, settings.ColumnsToKeep...), settings.CheckSameAddressColumns...))

	agents := make([]core.Agent, 0, len(rows))
	for rowNum, row := range rows {
		id := strings.TrimSpace(cell(row, idx[settings.IDColumn]))
		if id == "" {
			return nil, &core.InputError{Msg: rowErr(rowNum, "blank id cell")}
		}

		values := make(map[string]string, len(cats.Values))
		for feature := range cats.Values {
			v := strings.TrimSpace(cell(row, idx[feature]))
			values[feature] = v
		}

		keptCols := make(map[string]string, len(kept))
		for _, col := range kept {
			keptCols[col] = strings.TrimSpace(cell(row, idx[col]))
		}

		agent := core.Agent{ID: core.AgentID(id), Values: values, Kept: keptCols}
		if err := agent.Validate(cats); err != nil {
			return nil, &core.InputError{Msg: rowErr(rowNum, err.Error())}
		}
		agents = append(agents, agent)
	}
	return agents, nil
}

func dedupe(xs []string) []string {
	seen := make(map[string]bool, len(xs))
	out := xs[:0:0]
	for _, x := range xs {
		if seen[x] {
			continue
		}
		seen[x] = true
		out = append(out, x)
	}
	return out
}
