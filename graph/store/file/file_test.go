package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xlab/openrank/graph"
	"github.com/xlab/openrank/graph/graphtest"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(FileGraphTestSuite))
var _ = gc.Suite(new(LoaderTestSuite))

func Test(t *testing.T) { gc.TestingT(t) }

const fixtureDoc = `
nodes:
  - name: a
    properties: {init: 1.0}
  - name: b
    properties: {init: 2.0}
  - name: c
relationships:
  - {source: a, target: b, properties: {w: 0.5}}
  - {source: b, target: c, properties: {w: 0.25}}
  - {source: c, target: a, properties: {w: 1.0}}
`

type FileGraphTestSuite struct {
	graphtest.SuiteBase
}

func (s *FileGraphTestSuite) SetUpTest(c *gc.C) {
	path := filepath.Join(c.MkDir(), "graph.yaml")
	c.Assert(os.WriteFile(path, []byte(fixtureDoc), 0600), gc.IsNil)

	g, err := LoadFile(path)
	c.Assert(err, gc.IsNil)

	s.SetView(
		g,
		func(id int) string {
			name, _ := g.NodeName(id)
			return name
		},
		func(name string) int {
			id, _ := g.NodeID(name)
			return id
		},
	)
}

type LoaderTestSuite struct{}

func (s *LoaderTestSuite) TestUndirectedRelationships(c *gc.C) {
	g, err := Load(strings.NewReader(`
nodes:
  - {name: u1, labels: [User]}
  - {name: r1, labels: [Repo]}
relationships:
  - {source: u1, target: r1, properties: {weight: 0.8660254}, undirected: true}
`))
	c.Assert(err, gc.IsNil)
	c.Assert(g.NodeCount(), gc.Equals, 2)

	u1, _ := g.NodeID("u1")
	r1, _ := g.NodeID("r1")
	c.Assert(g.OutNeighbors(u1, "weight"), gc.DeepEquals, []graph.Relationship{{Target: r1, Weight: 0.8660254}})
	c.Assert(g.OutNeighbors(r1, "weight"), gc.DeepEquals, []graph.Relationship{{Target: u1, Weight: 0.8660254}})

	labels, err := g.Labels(r1)
	c.Assert(err, gc.IsNil)
	c.Assert(labels, gc.DeepEquals, []string{"Repo"})
}

func (s *LoaderTestSuite) TestUnknownEndpoint(c *gc.C) {
	_, err := Load(strings.NewReader(`
nodes:
  - {name: u1}
relationships:
  - {source: u1, target: ghost}
`))
	c.Assert(xerrors.Is(err, graph.ErrUnknownNode), gc.Equals, true)
	c.Assert(err, gc.ErrorMatches, `load graph: relationship target: .*unknown node`)
}

func (s *LoaderTestSuite) TestDuplicateNode(c *gc.C) {
	_, err := Load(strings.NewReader(`
nodes:
  - {name: u1}
  - {name: u1}
`))
	c.Assert(xerrors.Is(err, graph.ErrDuplicateNode), gc.Equals, true)
}

func (s *LoaderTestSuite) TestMalformedDocument(c *gc.C) {
	_, err := Load(strings.NewReader("nodes: {name: [}"))
	c.Assert(err, gc.ErrorMatches, "load graph: decode document: .*")
}

func (s *LoaderTestSuite) TestEmptyDocument(c *gc.C) {
	g, err := Load(strings.NewReader(""))
	c.Assert(err, gc.IsNil)
	c.Assert(g.NodeCount(), gc.Equals, 0)
}
