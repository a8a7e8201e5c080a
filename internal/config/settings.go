// Package config loads the TOML settings file and validates the
// categories and people tables described in spec.md §6.1.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/r3b0rn/panelshop/internal/core"
)

// Algorithm is the selection_algorithm setting.
type Algorithm string

const (
	AlgorithmLegacy  Algorithm = "legacy"
	AlgorithmMaximin Algorithm = "maximin"
	AlgorithmLeximin Algorithm = "leximin"
	AlgorithmNash    Algorithm = "nash"
)

// Settings mirrors spec.md §6.1's Settings block.
type Settings struct {
	IDColumn                string    `toml:"id_column"`
	ColumnsToKeep           []string  `toml:"columns_to_keep"`
	CheckSameAddress        bool      `toml:"check_same_address"`
	CheckSameAddressColumns []string  `toml:"check_same_address_columns"`
	MaxAttempts             int       `toml:"max_attempts"`
	SelectionAlgorithm      Algorithm `toml:"selection_algorithm"`
	RandomNumberSeed        int64     `toml:"random_number_seed"`
	NumberSelections        int       `toml:"number_selections"`
	TestSelection           bool      `toml:"test_selection"`
}

// defaultSettingsTOML is written out when no settings file exists yet,
// matching original_source's DEFAULT_SETTINGS constant.
const defaultSettingsTOML = `# this is the name of the (unique) field for each person
id_column = "id"

# if check_same_address is true, then no 2 people from the same address
# will be selected; the comparison checks if the TWO fields listed here
# are the same for any person
check_same_address = false
check_same_address_columns = []

columns_to_keep = []

# number of times the legacy algorithm will retry on a recoverable
# selection failure before giving up
max_attempts = 100

# one of: legacy, maximin, leximin, nash
selection_algorithm = "maximin"

# 0 means a fresh, nondeterministic seed on every run
random_number_seed = 0

# how many panels to draw from the optimized distribution
number_selections = 1

# when true, return any one feasible panel with no randomness, purely
# to test whether the quotas are satisfiable
test_selection = false
`

// Load reads settings from path, writing defaultSettingsTOML to path
// first if it does not yet exist.
func Load(path string) (*Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &core.ConfigError{Msg: "creating settings directory: " + err.Error()}
		}
		if err := os.WriteFile(path, []byte(defaultSettingsTOML), 0o644); err != nil {
			return nil, &core.ConfigError{Msg: "writing default settings: " + err.Error()}
		}
	}

	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, &core.ConfigError{Msg: "decoding settings file: " + err.Error()}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings' internal consistency (spec.md §6.1).
func (s *Settings) Validate() error {
	if s.IDColumn == "" {
		return &core.ConfigError{Msg: "id_column must not be blank"}
	}
	switch len(s.CheckSameAddressColumns) {
	case 0:
		if s.CheckSameAddress {
			return &core.ConfigError{Msg: "check_same_address is true but check_same_address_columns is empty"}
		}
	case 2:
	default:
		return &core.ConfigError{Msg: "check_same_address_columns must have length 0 or 2"}
	}
	switch s.SelectionAlgorithm {
	case AlgorithmLegacy, AlgorithmMaximin, AlgorithmLeximin, AlgorithmNash:
	default:
		return &core.UnknownAlgorithmError{Name: string(s.SelectionAlgorithm)}
	}
	if s.NumberSelections < 1 {
		return &core.ConfigError{Msg: "number_selections must be >= 1"}
	}
	if s.SelectionAlgorithm == AlgorithmLegacy && s.MaxAttempts < 1 {
		return &core.ConfigError{Msg: "max_attempts must be >= 1 for the legacy algorithm"}
	}
	return nil
}
