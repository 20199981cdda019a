package graphtest

import (
	"sort"

	"github.com/xlab/openrank/graph"
	gc "gopkg.in/check.v1"
)

// Fixture describes the well-known graph that SuiteBase expects the View
// under test to be populated with:
//
//  (a:{init:1.0}) -[w:0.5]-> (b:{init:2.0}) -[w:0.25]-> (c)
//        ^                                               |
//        +-------------------[w:1.0]---------------------+
//
// Node c does not carry an "init" value.
var Fixture = struct {
	Nodes         []string
	InitProperty  string
	WeightProp    string
	InitValues    map[string]float64
	Relationships []FixtureRelationship
}{
	Nodes:        []string{"a", "b", "c"},
	InitProperty: "init",
	WeightProp:   "w",
	InitValues:   map[string]float64{"a": 1.0, "b": 2.0},
	Relationships: []FixtureRelationship{
		{Src: "a", Dst: "b", Weight: 0.5},
		{Src: "b", Dst: "c", Weight: 0.25},
		{Src: "c", Dst: "a", Weight: 1.0},
	},
}

// FixtureRelationship describes a weighted relationship in Fixture.
type FixtureRelationship struct {
	Src, Dst string
	Weight   float64
}

// SuiteBase defines a re-usable set of tests that can be executed against
// any type that implements graph.View and has been populated with Fixture.
type SuiteBase struct {
	v      graph.View
	nameOf func(id int) string
	idOf   func(name string) int
}

// SetView configures the test-suite to run all tests against v. The
// provided callbacks map between fixture node names and node IDs.
func (s *SuiteBase) SetView(v graph.View, nameOf func(int) string, idOf func(string) int) {
	s.v = v
	s.nameOf = nameOf
	s.idOf = idOf
}

// TestNodeCount verifies that the view exposes all fixture nodes.
func (s *SuiteBase) TestNodeCount(c *gc.C) {
	c.Assert(s.v.NodeCount(), gc.Equals, len(Fixture.Nodes))
}

// TestNodeProperties verifies node property lookups.
func (s *SuiteBase) TestNodeProperties(c *gc.C) {
	c.Assert(s.v.HasProperty(Fixture.InitProperty), gc.Equals, true)
	c.Assert(s.v.HasProperty("no-such-property"), gc.Equals, false)

	for _, name := range Fixture.Nodes {
		got := s.v.NodePropertyValue(s.idOf(name), Fixture.InitProperty)
		c.Assert(got, gc.Equals, Fixture.InitValues[name], gc.Commentf("node %q", name))
	}
}

// TestOutNeighbors verifies weighted and unweighted out-neighbor iteration.
func (s *SuiteBase) TestOutNeighbors(c *gc.C) {
	c.Assert(s.v.HasRelationshipProperty(Fixture.WeightProp), gc.Equals, true)

	for _, r := range Fixture.Relationships {
		rels := s.v.OutNeighbors(s.idOf(r.Src), Fixture.WeightProp)
		c.Assert(rels, gc.HasLen, 1, gc.Commentf("node %q", r.Src))
		c.Assert(s.nameOf(rels[0].Target), gc.Equals, r.Dst)
		c.Assert(rels[0].Weight, gc.Equals, r.Weight)

		rels = s.v.OutNeighbors(s.idOf(r.Src), "")
		c.Assert(rels, gc.HasLen, 1)
		c.Assert(rels[0].Weight, gc.Equals, 1.0)
	}
}

// TestInNeighbors verifies that incoming relationships point back to their
// source nodes.
func (s *SuiteBase) TestInNeighbors(c *gc.C) {
	for _, r := range Fixture.Relationships {
		rels := s.v.InNeighbors(s.idOf(r.Dst), Fixture.WeightProp)
		var srcs []string
		for _, rel := range rels {
			srcs = append(srcs, s.nameOf(rel.Target))
			c.Assert(rel.Weight, gc.Equals, r.Weight)
		}
		sort.Strings(srcs)
		c.Assert(srcs, gc.DeepEquals, []string{r.Src}, gc.Commentf("node %q", r.Dst))
	}
}
