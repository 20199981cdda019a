package cdb

import (
	"context"
	"os"
	"testing"

	"github.com/xlab/openrank/graph/graphtest"
	"github.com/xlab/openrank/graph/store/memory"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(CockroachDBGraphTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

type CockroachDBGraphTestSuite struct {
	graphtest.SuiteBase
	g      *CockroachDBGraph
	loaded *memory.Graph
}

func (s *CockroachDBGraphTestSuite) SetUpSuite(c *gc.C) {
	dsn := os.Getenv("CDB_DSN")
	if dsn == "" {
		c.Skip("Missing CDB_DSN envvar; skipping cockroachdb-backed graph test suite")
	}

	g, err := NewCockroachDBGraph(dsn)
	c.Assert(err, gc.IsNil)
	c.Assert(g.EnsureSchema(context.TODO()), gc.IsNil)
	s.g = g
}

func (s *CockroachDBGraphTestSuite) SetUpTest(c *gc.C) {
	s.flushDB(c)

	ctx := context.TODO()
	ids := make(map[string]int64)
	for _, name := range graphtest.Fixture.Nodes {
		props := map[string]float64{}
		if v, ok := graphtest.Fixture.InitValues[name]; ok {
			props[graphtest.Fixture.InitProperty] = v
		}
		id, err := s.g.InsertNode(ctx, name, []string{"Node"}, props)
		c.Assert(err, gc.IsNil)
		ids[name] = id
	}
	for _, r := range graphtest.Fixture.Relationships {
		err := s.g.InsertRelationship(ctx, ids[r.Src], ids[r.Dst], map[string]float64{graphtest.Fixture.WeightProp: r.Weight})
		c.Assert(err, gc.IsNil)
	}

	loaded, err := s.g.Load(ctx)
	c.Assert(err, gc.IsNil)
	s.loaded = loaded
	s.SetView(
		loaded,
		func(id int) string {
			name, _ := loaded.NodeName(id)
			return name
		},
		func(name string) int {
			id, _ := loaded.NodeID(name)
			return id
		},
	)
}

func (s *CockroachDBGraphTestSuite) TearDownSuite(c *gc.C) {
	if s.g != nil {
		s.flushDB(c)
		c.Assert(s.g.Close(), gc.IsNil)
	}
}

func (s *CockroachDBGraphTestSuite) TestWriteNodeProperty(c *gc.C) {
	ctx := context.TODO()
	err := s.g.WriteNodeProperty(ctx, "open_rank_1", map[string]float64{"a": 0.25, "c": 1.5})
	c.Assert(err, gc.IsNil)

	reloaded, err := s.g.Load(ctx)
	c.Assert(err, gc.IsNil)
	c.Assert(reloaded.HasProperty("open_rank_1"), gc.Equals, true)

	a, _ := reloaded.NodeID("a")
	b, _ := reloaded.NodeID("b")
	c2, _ := reloaded.NodeID("c")
	c.Assert(reloaded.NodePropertyValue(a, "open_rank_1"), gc.Equals, 0.25)
	c.Assert(reloaded.NodePropertyValue(b, "open_rank_1"), gc.Equals, 0.0)
	c.Assert(reloaded.NodePropertyValue(c2, "open_rank_1"), gc.Equals, 1.5)
	c.Assert(reloaded.NodePropertyValue(a, graphtest.Fixture.InitProperty), gc.Equals, 1.0)
}

func (s *CockroachDBGraphTestSuite) flushDB(c *gc.C) {
	_, err := s.g.db.Exec("DELETE FROM relationships")
	c.Assert(err, gc.IsNil)
	_, err = s.g.db.Exec("DELETE FROM nodes")
	c.Assert(err, gc.IsNil)
}
