// Package file loads property graphs from YAML documents of the form:
//
//	nodes:
//	  - name: u1
//	    labels: [User]
//	    properties: {initValue: 1.0, retentionFactor: 0.5}
//	relationships:
//	  - source: u1
//	    target: r1
//	    properties: {weight: 0.27}
//	    undirected: false
//
// Undirected relationships are materialized as two directed relationships.
package file

import (
	"io"
	"os"

	"github.com/xlab/openrank/graph/store/memory"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// Document is the YAML representation of a property graph.
type Document struct {
	Nodes         []Node         `yaml:"nodes"`
	Relationships []Relationship `yaml:"relationships"`
}

// Node is the YAML representation of a graph node.
type Node struct {
	Name       string             `yaml:"name"`
	Labels     []string           `yaml:"labels"`
	Properties map[string]float64 `yaml:"properties"`
}

// Relationship is the YAML representation of a graph relationship.
type Relationship struct {
	Source     string             `yaml:"source"`
	Target     string             `yaml:"target"`
	Properties map[string]float64 `yaml:"properties"`
	Undirected bool               `yaml:"undirected"`
}

// LoadFile parses the YAML document at path into an in-memory graph.
func LoadFile(path string) (*memory.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("load graph: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Load parses a YAML graph document from r into an in-memory graph.
func Load(r io.Reader) (*memory.Graph, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, xerrors.Errorf("load graph: decode document: %w", err)
	}

	return Build(doc)
}

// Build populates a new in-memory graph from a parsed document.
func Build(doc Document) (*memory.Graph, error) {
	g := memory.NewGraph()
	for _, n := range doc.Nodes {
		if _, err := g.AddNode(n.Name, n.Labels, n.Properties); err != nil {
			return nil, xerrors.Errorf("load graph: %w", err)
		}
	}

	for _, r := range doc.Relationships {
		src, err := g.NodeID(r.Source)
		if err != nil {
			return nil, xerrors.Errorf("load graph: relationship source: %w", err)
		}
		dst, err := g.NodeID(r.Target)
		if err != nil {
			return nil, xerrors.Errorf("load graph: relationship target: %w", err)
		}

		if r.Undirected {
			err = g.AddUndirectedRelationship(src, dst, r.Properties)
		} else {
			err = g.AddRelationship(src, dst, r.Properties)
		}
		if err != nil {
			return nil, xerrors.Errorf("load graph: %w", err)
		}
	}

	return g, nil
}
