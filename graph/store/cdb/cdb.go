package cdb

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
	"github.com/xlab/openrank/graph/store/memory"
	"golang.org/x/xerrors"
)

var (
	createNodesTableQuery = `
CREATE TABLE IF NOT EXISTS nodes (
	id SERIAL PRIMARY KEY,
	name STRING NOT NULL UNIQUE,
	labels STRING[] NOT NULL DEFAULT ARRAY[],
	properties JSONB NOT NULL DEFAULT '{}'
)`
	createRelationshipsTableQuery = `
CREATE TABLE IF NOT EXISTS relationships (
	id SERIAL PRIMARY KEY,
	src INT8 NOT NULL REFERENCES nodes (id) ON DELETE CASCADE,
	dst INT8 NOT NULL REFERENCES nodes (id) ON DELETE CASCADE,
	properties JSONB NOT NULL DEFAULT '{}'
)`

	insertNodeQuery         = "INSERT INTO nodes (name, labels, properties) VALUES ($1, $2, $3) RETURNING id"
	insertRelationshipQuery = "INSERT INTO relationships (src, dst, properties) VALUES ($1, $2, $3)"
	nodesQuery              = "SELECT name, labels, properties FROM nodes ORDER BY id"
	relationshipsQuery      = `
SELECT s.name, d.name, r.properties FROM relationships r
JOIN nodes s ON r.src = s.id
JOIN nodes d ON r.dst = d.id
ORDER BY r.id`
	setNodePropertyQuery = "UPDATE nodes SET properties = jsonb_set(properties, $1, to_jsonb($2::FLOAT8)) WHERE name = $3"
)

// CockroachDBGraph persists property graphs to a cockroachdb (or any
// postgres wire-compatible) instance.
type CockroachDBGraph struct {
	db *sql.DB
}

// NewCockroachDBGraph returns a CockroachDBGraph instance that connects to
// the cockroachdb instance specified by dsn.
func NewCockroachDBGraph(dsn string) (*CockroachDBGraph, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	return &CockroachDBGraph{db: db}, nil
}

// Close terminates the connection to the backing cockroachdb instance.
func (c *CockroachDBGraph) Close() error {
	return c.db.Close()
}

// EnsureSchema creates the nodes and relationships tables if they do not
// already exist.
func (c *CockroachDBGraph) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{createNodesTableQuery, createRelationshipsTableQuery} {
		if _, err := c.db.ExecContext(ctx, q); err != nil {
			return xerrors.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// InsertNode creates a new node and returns its database ID.
func (c *CockroachDBGraph) InsertNode(ctx context.Context, name string, labels []string, props map[string]float64) (int64, error) {
	encProps, err := encodeProperties(props)
	if err != nil {
		return 0, xerrors.Errorf("insert node: %w", err)
	}
	if labels == nil {
		labels = []string{}
	}

	var id int64
	row := c.db.QueryRowContext(ctx, insertNodeQuery, name, pq.Array(labels), encProps)
	if err = row.Scan(&id); err != nil {
		return 0, xerrors.Errorf("insert node: %w", err)
	}
	return id, nil
}

// InsertRelationship creates a new directed relationship between two nodes
// identified by their database IDs.
func (c *CockroachDBGraph) InsertRelationship(ctx context.Context, src, dst int64, props map[string]float64) error {
	encProps, err := encodeProperties(props)
	if err != nil {
		return xerrors.Errorf("insert relationship: %w", err)
	}
	if _, err = c.db.ExecContext(ctx, insertRelationshipQuery, src, dst, encProps); err != nil {
		return xerrors.Errorf("insert relationship: %w", err)
	}
	return nil
}

// Load materializes a snapshot of the stored graph as an in-memory graph
// that can be used as a graph.View. Node IDs are assigned in the order of
// their database IDs.
func (c *CockroachDBGraph) Load(ctx context.Context) (*memory.Graph, error) {
	g := memory.NewGraph()
	if err := c.loadNodes(ctx, g); err != nil {
		return nil, err
	}
	if err := c.loadRelationships(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (c *CockroachDBGraph) loadNodes(ctx context.Context, g *memory.Graph) error {
	rows, err := c.db.QueryContext(ctx, nodesQuery)
	if err != nil {
		return xerrors.Errorf("load nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			name     string
			labels   []string
			rawProps []byte
		)
		if err = rows.Scan(&name, pq.Array(&labels), &rawProps); err != nil {
			return xerrors.Errorf("load nodes: %w", err)
		}
		props, err := decodeProperties(rawProps)
		if err != nil {
			return xerrors.Errorf("load nodes: node %q: %w", name, err)
		}
		if _, err = g.AddNode(name, labels, props); err != nil {
			return xerrors.Errorf("load nodes: %w", err)
		}
	}
	if err = rows.Err(); err != nil {
		return xerrors.Errorf("load nodes: %w", err)
	}
	return nil
}

func (c *CockroachDBGraph) loadRelationships(ctx context.Context, g *memory.Graph) error {
	rows, err := c.db.QueryContext(ctx, relationshipsQuery)
	if err != nil {
		return xerrors.Errorf("load relationships: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			srcName, dstName string
			rawProps         []byte
		)
		if err = rows.Scan(&srcName, &dstName, &rawProps); err != nil {
			return xerrors.Errorf("load relationships: %w", err)
		}
		props, err := decodeProperties(rawProps)
		if err != nil {
			return xerrors.Errorf("load relationships: %q -> %q: %w", srcName, dstName, err)
		}

		src, err := g.NodeID(srcName)
		if err != nil {
			return xerrors.Errorf("load relationships: %w", err)
		}
		dst, err := g.NodeID(dstName)
		if err != nil {
			return xerrors.Errorf("load relationships: %w", err)
		}
		if err = g.AddRelationship(src, dst, props); err != nil {
			return xerrors.Errorf("load relationships: %w", err)
		}
	}
	if err = rows.Err(); err != nil {
		return xerrors.Errorf("load relationships: %w", err)
	}
	return nil
}

// WriteNodeProperty persists a computed property for a set of nodes keyed by
// node name. All updates are applied in a single transaction.
func (c *CockroachDBGraph) WriteNodeProperty(ctx context.Context, property string, values map[string]float64) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return xerrors.Errorf("write node property: %w", err)
	}

	path := pq.Array([]string{property})
	for name, value := range values {
		if _, err = tx.ExecContext(ctx, setNodePropertyQuery, path, value, name); err != nil {
			_ = tx.Rollback()
			return xerrors.Errorf("write node property %q for %q: %w", property, name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return xerrors.Errorf("write node property: %w", err)
	}
	return nil
}

func encodeProperties(props map[string]float64) ([]byte, error) {
	if props == nil {
		props = map[string]float64{}
	}
	return json.Marshal(props)
}

func decodeProperties(raw []byte) (map[string]float64, error) {
	props := make(map[string]float64)
	if len(raw) == 0 {
		return props, nil
	}
	if err := json.Unmarshal(raw, &props); err != nil {
		return nil, xerrors.Errorf("decode properties: %w", err)
	}
	return props, nil
}
