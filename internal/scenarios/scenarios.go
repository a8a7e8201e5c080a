// Package scenarios builds the literal worked examples of spec.md §8
// ("Concrete end-to-end scenarios") as reusable test fixtures, so every
// algorithm package can assert against the same golden inputs without
// each duplicating the setup.
package scenarios

import "github.com/r3b0rn/panelshop/internal/core"

// Fixture bundles everything one scenario needs to drive an algorithm.
type Fixture struct {
	Agents []core.Agent
	Cats   *core.Categories
	K      int
}

func quota(min, max int) core.Quota {
	return core.Quota{Min: min, Max: max, MinFlex: 0, MaxFlex: max}
}

// A is spec.md §8 Scenario A: two features, 5 agents, k=2, no
// addresses.
func A() Fixture {
	return Fixture{
		K: 2,
		Agents: []core.Agent{
			{ID: "lisa", Values: map[string]string{"age": "child", "franchise": "simpsons"}},
			{ID: "marge", Values: map[string]string{"age": "adult", "franchise": "simpsons"}},
			{ID: "louie", Values: map[string]string{"age": "child", "franchise": "ducktales"}},
			{ID: "dewey", Values: map[string]string{"age": "child", "franchise": "ducktales"}},
			{ID: "scrooge", Values: map[string]string{"age": "adult", "franchise": "ducktales"}},
		},
		Cats: &core.Categories{
			Values: map[string][]string{
				"age":       {"child", "adult"},
				"franchise": {"simpsons", "ducktales"},
			},
			Quotas: map[core.FeatureValue]core.Quota{
				{Feature: "age", Value: "child"}:           quota(1, 2),
				{Feature: "age", Value: "adult"}:           quota(1, 2),
				{Feature: "franchise", Value: "simpsons"}:  quota(1, 2),
				{Feature: "franchise", Value: "ducktales"}: quota(1, 2),
			},
		},
	}
}

// B is Scenario A plus households: lisa & scrooge in household 1,
// louie & dewey in household 2. The second return value is the agents
// with a synthetic "addr" kept column, to pass to household.Build with
// []string{"addr"}.
func B() (Fixture, []core.Agent) {
	fx := A()
	addressed := make([]core.Agent, len(fx.Agents))
	addrOf := map[core.AgentID]string{
		"lisa": "house-1", "scrooge": "house-1",
		"louie": "house-2", "dewey": "house-2",
		"marge": "house-3",
	}
	for i, a := range fx.Agents {
		a.Kept = map[string]string{"addr": addrOf[a.ID]}
		addressed[i] = a
	}
	return fx, addressed
}

// C is Scenario C: three binary features f1,f2,f3 with v1 in [1,2],
// four agents, k=2, every feasible panel must contain "a".
func C() Fixture {
	return Fixture{
		K: 2,
		Agents: []core.Agent{
			{ID: "a", Values: map[string]string{"f1": "v1", "f2": "v1", "f3": "v1"}},
			{ID: "b", Values: map[string]string{"f1": "v1", "f2": "v2", "f3": "v2"}},
			{ID: "c", Values: map[string]string{"f1": "v2", "f2": "v1", "f3": "v2"}},
			{ID: "d", Values: map[string]string{"f1": "v2", "f2": "v2", "f3": "v1"}},
		},
		Cats: &core.Categories{
			Values: map[string][]string{
				"f1": {"v1", "v2"},
				"f2": {"v1", "v2"},
				"f3": {"v1", "v2"},
			},
			Quotas: map[core.FeatureValue]core.Quota{
				{Feature: "f1", Value: "v1"}: quota(1, 2),
				{Feature: "f1", Value: "v2"}: quota(0, 2),
				{Feature: "f2", Value: "v1"}: quota(1, 2),
				{Feature: "f2", Value: "v2"}: quota(0, 2),
				{Feature: "f3", Value: "v1"}: quota(1, 2),
				{Feature: "f3", Value: "v2"}: quota(0, 2),
			},
		},
	}
}

// D is Scenario C with every v1 quota tightened to [1,1]: infeasible.
func D() Fixture {
	fx := C()
	for fv, q := range fx.Cats.Quotas {
		if fv.Value == "v1" {
			q.Max = 1
			q.MaxFlex = 2
			fx.Cats.Quotas[fv] = q
		}
	}
	return fx
}
