package household

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/r3b0rn/panelshop/internal/core"
)

func agent(id string, addr1, addr2 string) core.Agent {
	return core.Agent{
		ID:   core.AgentID(id),
		Kept: map[string]string{"addr1": addr1, "addr2": addr2},
	}
}

func TestBuildGroupsSharedAddress(t *testing.T) {
	agents := []core.Agent{
		agent("lisa", "742 Evergreen Terrace", "Springfield"),
		agent("scrooge", "742 Evergreen Terrace", "Springfield"),
		agent("louie", "1313 Webfoot Walk", "Duckburg"),
		agent("dewey", "1313 Webfoot Walk", "Duckburg"),
		agent("marge", "24 Ocean Ave", "Springfield"),
	}
	g := Build(agents, []string{"addr1", "addr2"})

	households := g.Households()
	assert.Len(t, households, 2, "only households with 2+ members are reported")

	lisaHousehold := g.Of("lisa")
	assert.ElementsMatch(t, []core.AgentID{"lisa", "scrooge"}, lisaHousehold)

	margeHousehold := g.Of("marge")
	assert.ElementsMatch(t, []core.AgentID{"marge"}, margeHousehold, "singleton household still returns self")
}

func TestBuildNoAddressColumnsDisablesGrouping(t *testing.T) {
	agents := []core.Agent{agent("a", "x", "y"), agent("b", "x", "y")}
	g := Build(agents, nil)
	assert.Empty(t, g.Households())
	assert.Equal(t, []core.AgentID{"a"}, g.Of("a"))
}

func TestBuildCommaInsideFieldDoesNotCollideWithSeparator(t *testing.T) {
	// ("a", " b") joins to "a, b" while ("a, b", "") joins to "a, b,":
	// the trailing separator keeps the two keys distinct.
	withSplit := agent("x", "a", " b")
	whole := agent("y", "a, b", "")

	g := Build([]core.Agent{withSplit, whole}, []string{"addr1", "addr2"})
	assert.NotEqual(t, g.Of("x"), g.Of("y"))
}
