// Package household derives the household-equivalence relation over a
// pool of agents from a configured list of address-match columns.
package household

import (
	"hash/fnv"
	"strings"

	"github.com/r3b0rn/panelshop/internal/core"
)

// Groups partitions agent IDs into households: agents sharing a hash
// key are assumed to share an address. A household of size 1 imposes no
// constraint.
type Groups struct {
	byKey map[uint64][]core.AgentID
	keyOf map[core.AgentID]uint64
}

// Build groups agents by the concatenation of the given address
// columns, matching original_source's get_people_at_same_address, which
// joins address columns with a comma before comparing. Columns are
// hashed with FNV-1a rather than compared pairwise, making this linear
// in the pool size instead of the source's O(n^2) nested loop.
func Build(agents []core.Agent, addressColumns []string) *Groups {
	g := &Groups{
		byKey: make(map[uint64][]core.AgentID),
		keyOf: make(map[core.AgentID]uint64, len(agents)),
	}
	if len(addressColumns) == 0 {
		return g
	}
	for _, a := range agents {
		key := addressKey(a, addressColumns)
		g.byKey[key] = append(g.byKey[key], a.ID)
		g.keyOf[a.ID] = key
	}
	return g
}

func addressKey(a core.Agent, addressColumns []string) uint64 {
	var sb strings.Builder
	for i, col := range addressColumns {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.Kept[col])
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(sb.String()))
	return h.Sum64()
}

// Households returns every household with 2 or more members — the only
// ones that constrain panel feasibility (spec §4.1).
func (g *Groups) Households() [][]core.AgentID {
	out := make([][]core.AgentID, 0, len(g.byKey))
	for _, members := range g.byKey {
		if len(members) >= 2 {
			out = append(out, members)
		}
	}
	return out
}

// Of returns the other members (including id itself) of id's household.
func (g *Groups) Of(id core.AgentID) []core.AgentID {
	key, ok := g.keyOf[id]
	if !ok {
		return []core.AgentID{id}
	}
	return g.byKey[key]
}
