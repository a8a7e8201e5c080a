// Package core holds the data model shared by every selection algorithm:
// features and their quotas, agents, panels, and the probability
// distribution a panel-generation run produces over them.
package core

import (
	"fmt"
	"sort"
)

// Quota is the hard [Min,Max] range and the soft [MinFlex,MaxFlex] range
// for one (feature, value) pair.
//
// Invariant: 0 <= MinFlex <= Min <= Max <= MaxFlex.
type Quota struct {
	Min, Max         int
	MinFlex, MaxFlex int
}

// Validate checks the quota's internal ordering invariant.
func (q Quota) Validate() error {
	if q.MinFlex < 0 {
		return fmt.Errorf("min_flex must be >= 0 (got %d)", q.MinFlex)
	}
	if q.MinFlex > q.Min {
		return fmt.Errorf("min_flex must be <= min (got min_flex=%d, min=%d)", q.MinFlex, q.Min)
	}
	if q.Min > q.Max {
		return fmt.Errorf("min must be <= max (got min=%d, max=%d)", q.Min, q.Max)
	}
	if q.Max > q.MaxFlex {
		return fmt.Errorf("max must be <= max_flex (got max=%d, max_flex=%d)", q.Max, q.MaxFlex)
	}
	return nil
}

// FeatureValue identifies one value of one categorical feature, e.g.
// ("age", "18-24").
type FeatureValue struct {
	Feature string
	Value   string
}

// Categories is the full quota table: one Quota per (feature, value).
type Categories struct {
	// Values lists, for each feature, the values it may take, in the
	// order they were read from the categories table.
	Values map[string][]string
	Quotas map[FeatureValue]Quota
}

// Features returns the feature names in a stable, sorted order.
func (c *Categories) Features() []string {
	names := make([]string, 0, len(c.Values))
	for f := range c.Values {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// Quota returns the quota for (feature, value), and whether it exists.
func (c *Categories) Quota(feature, value string) (Quota, bool) {
	q, ok := c.Quotas[FeatureValue{feature, value}]
	return q, ok
}

// Validate checks every quota's invariant and that Values/Quotas agree.
func (c *Categories) Validate() error {
	if c == nil {
		return fmt.Errorf("categories is nil")
	}
	for feature, values := range c.Values {
		if len(values) == 0 {
			return fmt.Errorf("feature %q has no values", feature)
		}
		for _, v := range values {
			q, ok := c.Quota(feature, v)
			if !ok {
				return fmt.Errorf("missing quota row for (%q, %q)", feature, v)
			}
			if err := q.Validate(); err != nil {
				return fmt.Errorf("quota (%q, %q): %w", feature, v, err)
			}
		}
	}
	return nil
}

// AgentID uniquely identifies a pool member.
type AgentID string

// Agent is one respondent: an identifier, a value for every feature, and
// an opaque bag of passthrough columns.
type Agent struct {
	ID     AgentID
	Values map[string]string // feature name -> value
	Kept   map[string]string // columns_to_keep -> value, passthrough
}

// Value returns the agent's value for the given feature.
func (a Agent) Value(feature string) (string, bool) {
	v, ok := a.Values[feature]
	return v, ok
}

// Validate checks the agent carries a value for every feature in cats and
// that every such value is a recognized level of that feature.
func (a Agent) Validate(cats *Categories) error {
	if a.ID == "" {
		return fmt.Errorf("agent has blank id")
	}
	for feature, values := range cats.Values {
		v, ok := a.Values[feature]
		if !ok {
			return fmt.Errorf("agent %s: missing value for feature %q", a.ID, feature)
		}
		if !containsString(values, v) {
			return fmt.Errorf("agent %s: unknown value %q for feature %q", a.ID, v, feature)
		}
	}
	return nil
}

// Panel is an unordered set of exactly k agent IDs.
type Panel struct {
	Agents []AgentID
}

// Contains reports whether id is a member of the panel.
func (p Panel) Contains(id AgentID) bool {
	for _, a := range p.Agents {
		if a == id {
			return true
		}
	}
	return false
}

// Key returns a canonical, order-independent string identifying the
// panel's membership, usable as a map key for deduplication.
func (p Panel) Key() string {
	ids := make([]string, len(p.Agents))
	for i, a := range p.Agents {
		ids[i] = string(a)
	}
	sort.Strings(ids)
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += "\x00"
		}
		out += id
	}
	return out
}

// WeightedPanel pairs a panel with its probability mass.
type WeightedPanel struct {
	Panel Panel
	Prob  float64
}

// Distribution is a finite probability distribution over feasible panels.
type Distribution struct {
	Panels []WeightedPanel
}

// Marginals returns, for each agent appearing in any panel, the total
// probability mass of panels containing it.
func (d Distribution) Marginals() map[AgentID]float64 {
	out := make(map[AgentID]float64)
	for _, wp := range d.Panels {
		for _, id := range wp.Panel.Agents {
			out[id] += wp.Prob
		}
	}
	return out
}

// Log is an append-only diagnostic trail: seed panels discovered,
// per-iteration optimality gaps, relaxation suggestions. HTML fragments
// are permitted for GUI consumers, per spec.
type Log struct {
	Lines []string
}

// Printf appends a formatted line to the log.
func (l *Log) Printf(format string, args ...any) {
	l.Lines = append(l.Lines, fmt.Sprintf(format, args...))
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
