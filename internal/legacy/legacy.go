// Package legacy implements spec.md §4.7: the greedy, ratio-driven
// single-panel sampler kept for backward compatibility, wrapped in an
// outer retry loop over fresh deep copies of its working state.
//
// Grounded on original_source/stratification.py's find_max_ratio_cat /
// delete_person / delete_all_in_cat trio: each (feature, value) tracks
// "remaining" (still-available pool members) and "selected" counts, the
// sampler always removes the category with the largest pressure ratio
// next, and removing the last person from a category that hasn't hit
// its minimum is immediately fatal (a SelectionError). Household
// co-residents of a chosen agent are removed without counting toward
// "selected" (spec.md §4.7 step 3), matching
// get_people_at_same_address/really_delete_person(selected=False).
package legacy

import (
	"math/rand"
	"sort"

	"github.com/r3b0rn/panelshop/internal/core"
	"github.com/r3b0rn/panelshop/internal/household"
)

type catState struct {
	min, max, selected, remaining int
}

type state struct {
	cats     map[core.FeatureValue]*catState
	catOrder []core.FeatureValue
	people   map[core.AgentID]core.Agent
	// order is the original agent input order; membersOf and any other
	// pass over s.people walks this slice instead of ranging the map
	// directly, so results are reproducible for a fixed rng regardless
	// of Go's randomized map iteration order.
	order      []core.AgentID
	households *household.Groups
}

func newState(agents []core.Agent, cats *core.Categories, groups *household.Groups) *state {
	s := &state{
		cats:       make(map[core.FeatureValue]*catState, len(cats.Quotas)),
		people:     make(map[core.AgentID]core.Agent, len(agents)),
		order:      make([]core.AgentID, 0, len(agents)),
		households: groups,
	}
	for fv, q := range cats.Quotas {
		s.cats[fv] = &catState{min: q.Min, max: q.Max}
		s.catOrder = append(s.catOrder, fv)
	}
	sort.Slice(s.catOrder, func(i, j int) bool {
		a, b := s.catOrder[i], s.catOrder[j]
		if a.Feature != b.Feature {
			return a.Feature < b.Feature
		}
		return a.Value < b.Value
	})
	for _, a := range agents {
		s.people[a.ID] = a
		s.order = append(s.order, a.ID)
		for feature, value := range a.Values {
			if cs, ok := s.cats[core.FeatureValue{Feature: feature, Value: value}]; ok {
				cs.remaining++
			}
		}
	}
	return s
}

// ratioPick is the result of find_max_ratio_cat: the tightest
// (feature,value) and one of its remaining members, chosen uniformly.
type ratioPick struct {
	fv     core.FeatureValue
	person core.AgentID
}

func (s *state) findMaxRatioCat(rng *rand.Rand) (ratioPick, error) {
	best := -100.0
	var bestFV core.FeatureValue
	haveBest := false

	for _, fv := range s.catOrder {
		cs := s.cats[fv]
		if cs.selected < cs.min && cs.remaining < cs.min-cs.selected {
			return ratioPick{}, &core.SelectionError{Msg: "no people (or not enough) remaining for " + fv.Feature + "=" + fv.Value}
		}
		if cs.remaining == 0 || cs.max == 0 {
			continue
		}
		ratio := float64(cs.min-cs.selected) / float64(cs.remaining)
		if ratio > 1 {
			return ratioPick{}, &core.SelectionError{Msg: "pressure ratio > 1 for " + fv.Feature + "=" + fv.Value}
		}
		if ratio > best {
			best = ratio
			bestFV = fv
			haveBest = true
		}
	}
	if !haveBest {
		return ratioPick{}, &core.SelectionError{Msg: "no category with remaining candidates"}
	}

	candidates := s.membersOf(bestFV)
	if len(candidates) == 0 {
		return ratioPick{}, &core.SelectionError{Msg: "no remaining candidates for " + bestFV.Feature + "=" + bestFV.Value}
	}
	chosen := candidates[rng.Intn(len(candidates))]
	return ratioPick{fv: bestFV, person: chosen}, nil
}

func (s *state) membersOf(fv core.FeatureValue) []core.AgentID {
	var out []core.AgentID
	for _, id := range s.order {
		a, ok := s.people[id]
		if !ok {
			continue
		}
		if v, ok := a.Values[fv.Feature]; ok && v == fv.Value {
			out = append(out, id)
		}
	}
	return out
}

// reallyDelete removes a person, crediting "selected" only when
// selected is true, mirroring really_delete_person.
func (s *state) reallyDelete(id core.AgentID, selected bool) error {
	person, ok := s.people[id]
	if !ok {
		return nil
	}
	for feature, value := range person.Values {
		fv := core.FeatureValue{Feature: feature, Value: value}
		cs := s.cats[fv]
		if cs == nil {
			continue
		}
		if selected {
			cs.selected++
		}
		cs.remaining--
		if cs.remaining == 0 && cs.selected < cs.min {
			return &core.SelectionError{Msg: "no one left in " + value}
		}
	}
	delete(s.people, id)
	return nil
}

// deleteAllInCat removes every remaining person holding fv, used when a
// category reaches its max (delete_all_in_cat).
func (s *state) deleteAllInCat(fv core.FeatureValue) error {
	toDelete := s.membersOf(fv)
	for _, id := range toDelete {
		person := s.people[id]
		for feature, value := range person.Values {
			otherFV := core.FeatureValue{Feature: feature, Value: value}
			cs := s.cats[otherFV]
			if cs == nil {
				continue
			}
			cs.remaining--
			if cs.remaining == 0 && cs.selected < cs.min {
				return &core.SelectionError{Msg: "no one left in " + value + " after category became full"}
			}
		}
	}
	for _, id := range toDelete {
		delete(s.people, id)
	}
	return nil
}

// choosePerson implements spec.md §4.7 step 3: remove the chosen agent
// and, if households are configured, its co-residents (without
// crediting them as selected), then sweep any category that just hit
// its max.
func (s *state) choosePerson(id core.AgentID) error {
	person := s.people[id]

	if s.households != nil {
		for _, mate := range s.households.Of(id) {
			if mate == id {
				continue
			}
			if _, stillHere := s.people[mate]; stillHere {
				if err := s.reallyDelete(mate, false); err != nil {
					return err
				}
			}
		}
	}

	if err := s.reallyDelete(id, true); err != nil {
		return err
	}

	for feature, value := range person.Values {
		fv := core.FeatureValue{Feature: feature, Value: value}
		if cs := s.cats[fv]; cs != nil && cs.selected == cs.max {
			if err := s.deleteAllInCat(fv); err != nil {
				return err
			}
		}
	}
	return nil
}

// Result is one successful legacy run.
type Result struct {
	Panel    core.Panel
	Attempts int
}

// Run wraps spec.md §4.7's greedy loop in the outer retry-with-fresh-
// copy loop: each attempt starts from the unmutated agents/categories
// and runs its own *rand.Rand derived from seed (spec.md §9
// "Determinism" — a nonzero seed makes the legacy sampler deterministic
// per attempt number; a zero seed draws a fresh base seed on every call).
func Run(agents []core.Agent, cats *core.Categories, k int, groups *household.Groups, seed int64, maxAttempts int) (*Result, error) {
	if seed == 0 {
		seed = rand.Int63()
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		rng := rand.New(rand.NewSource(seed + int64(attempt)))
		s := newState(agents, cats, groups)

		panel, err := runOneAttempt(s, k, rng)
		if err == nil {
			return &Result{Panel: panel, Attempts: attempt}, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = &core.SelectionError{Msg: "no attempts configured"}
	}
	return nil, lastErr
}

func runOneAttempt(s *state, k int, rng *rand.Rand) (core.Panel, error) {
	var chosen []core.AgentID
	for len(chosen) < k {
		if len(s.people) == 0 {
			return core.Panel{}, &core.SelectionError{Msg: "ran out of remaining agents before reaching panel size"}
		}
		pick, err := s.findMaxRatioCat(rng)
		if err != nil {
			return core.Panel{}, err
		}
		if err := s.choosePerson(pick.person); err != nil {
			return core.Panel{}, err
		}
		chosen = append(chosen, pick.person)
	}

	for _, fv := range s.catOrder {
		if cs := s.cats[fv]; cs.selected < cs.min {
			return core.Panel{}, &core.SelectionError{Msg: "lower quota unmet for " + fv.Feature + "=" + fv.Value}
		}
	}
	return core.Panel{Agents: chosen}, nil
}
