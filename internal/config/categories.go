package config

import (
	"strconv"
	"strings"

	"github.com/r3b0rn/panelshop/internal/core"
)

// categoryHeaderRequired is the set of column names the categories
// table must carry, exactly, with no duplicates.
var categoryHeaderRequired = []string{"category", "name", "min", "max"}

// ParseCategories validates and converts raw categories rows (as read
// by the CSV/spreadsheet collaborator, out of scope for this module)
// into a core.Categories table.
func ParseCategories(header []string, rows [][]string) (*core.Categories, error) {
	idx, err := categoriesHeaderIndex(header)
	if err != nil {
		return nil, err
	}

	cats := &core.Categories{
		Values: make(map[string][]string),
		Quotas: make(map[core.FeatureValue]core.Quota),
	}

	// featureMaxSum accumulates, per feature, the sum of max across all
	// of that feature's values (original_source's
	// min_max_people[cat]["max"] += cat_max), and maxOfMaxSums tracks
	// the largest such per-feature sum for the max_flex default
	// (spec.md §9, SPEC_FULL.md §C: "the largest sum-of-maxes in the
	// source"), computed only after the whole file has been read, so
	// unresolved rows are queued here.
	type pending struct {
		feature, value string
		min, max       int
		minFlex        int
		hasMaxFlex     bool
		maxFlex        int
	}
	var unresolved []pending
	featureMaxSum := make(map[string]int)
	maxOfMaxSums := 0

	for rowNum, row := range rows {
		feature := strings.TrimSpace(cell(row, idx["category"]))
		value := strings.TrimSpace(cell(row, idx["name"]))
		minStr := strings.TrimSpace(cell(row, idx["min"]))
		maxStr := strings.TrimSpace(cell(row, idx["max"]))

		if feature == "" {
			return nil, &core.InputError{Msg: rowErr(rowNum, "blank category cell")}
		}
		if value == "" {
			return nil, &core.InputError{Msg: rowErr(rowNum, "blank name cell")}
		}
		if minStr == "" || maxStr == "" {
			return nil, &core.InputError{Msg: rowErr(rowNum, "blank min or max cell")}
		}
		min, err := strconv.Atoi(minStr)
		if err != nil {
			return nil, &core.InputError{Msg: rowErr(rowNum, "min is not an integer: "+minStr)}
		}
		max, err := strconv.Atoi(maxStr)
		if err != nil {
			return nil, &core.InputError{Msg: rowErr(rowNum, "max is not an integer: "+maxStr)}
		}

		if !containsValue(cats.Values[feature], value) {
			cats.Values[feature] = append(cats.Values[feature], value)
		}
		featureMaxSum[feature] += max
		if featureMaxSum[feature] > maxOfMaxSums {
			maxOfMaxSums = featureMaxSum[feature]
		}

		p := pending{feature: feature, value: value, min: min, max: max}
		if hasFlexColumns(idx) {
			minFlexStr := strings.TrimSpace(cell(row, idx["min_flex"]))
			maxFlexStr := strings.TrimSpace(cell(row, idx["max_flex"]))
			if minFlexStr == "" || maxFlexStr == "" {
				return nil, &core.InputError{Msg: rowErr(rowNum, "blank min_flex or max_flex cell")}
			}
			minFlex, err := strconv.Atoi(minFlexStr)
			if err != nil {
				return nil, &core.InputError{Msg: rowErr(rowNum, "min_flex is not an integer: "+minFlexStr)}
			}
			maxFlex, err := strconv.Atoi(maxFlexStr)
			if err != nil {
				return nil, &core.InputError{Msg: rowErr(rowNum, "max_flex is not an integer: "+maxFlexStr)}
			}
			p.minFlex = minFlex
			p.hasMaxFlex = true
			p.maxFlex = maxFlex
		}
		unresolved = append(unresolved, p)
	}

	for _, p := range unresolved {
		maxFlex := p.maxFlex
		if !p.hasMaxFlex {
			maxFlex = maxOfMaxSums
		}
		q := core.Quota{Min: p.min, Max: p.max, MinFlex: p.minFlex, MaxFlex: maxFlex}
		cats.Quotas[core.FeatureValue{Feature: p.feature, Value: p.value}] = q
	}

	if err := cats.Validate(); err != nil {
		return nil, &core.InputError{Msg: err.Error()}
	}
	return cats, nil
}

func categoriesHeaderIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := idx[name]; dup {
			return nil, &core.InputError{Msg: "duplicate column name in categories header: " + name}
		}
		idx[name] = i
	}
	for _, req := range categoryHeaderRequired {
		if _, ok := idx[req]; !ok {
			return nil, &core.InputError{Msg: "categories header missing required column: " + req}
		}
	}
	_, hasMin := idx["min_flex"]
	_, hasMax := idx["max_flex"]
	if hasMin != hasMax {
		return nil, &core.InputError{Msg: "categories header has only one of min_flex/max_flex; both or neither are required"}
	}
	return idx, nil
}

func hasFlexColumns(idx map[string]int) bool {
	_, ok := idx["min_flex"]
	return ok
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func containsValue(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func rowErr(rowNum int, msg string) string {
	return "row " + strconv.Itoa(rowNum+1) + ": " + msg
}
