package render

import (
	"context"
	"errors"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/store"
)

// EdgeKind distinguishes the three link types between records.
type EdgeKind string

const (
	EdgeDependency EdgeKind = "dependency"
	EdgeParent     EdgeKind = "parent"
	EdgeModule     EdgeKind = "module"
)

// StatusMissing marks a node with no record in the store.
const StatusMissing artifact.Status = "missing"

// Node is one coordinate in the diagram.
type Node struct {
	ID          string
	Status      artifact.Status
	Description string
	Depth       int
}

// Edge links two node ids.
type Edge struct {
	From, To string
	Kind     EdgeKind
	Scope    string
}

// Graph is the subgraph around a root coordinate.
type Graph struct {
	Root  string
	Nodes []Node
	Edges []Edge
}

// Getter is the part of [store.Store] the renderer reads.
type Getter interface {
	Get(ctx context.Context, c artifact.Coordinate) (*artifact.Record, error)
}

// Neighbourhood collects root's dependencies breadth-first up to depth
// levels, plus root's parent and modules. Coordinates without a record are
// included as [StatusMissing] nodes and not expanded.
func Neighbourhood(ctx context.Context, s Getter, root artifact.Coordinate, depth int) (*Graph, error) {
	g := &Graph{Root: root.String()}
	seen := make(map[artifact.Coordinate]bool)

	lookup := func(c artifact.Coordinate, d int) (*artifact.Record, error) {
		if seen[c] {
			return nil, nil
		}
		seen[c] = true
		rec, err := s.Get(ctx, c)
		if errors.Is(err, store.ErrNotFound) {
			g.Nodes = append(g.Nodes, Node{ID: c.String(), Status: StatusMissing, Depth: d})
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, Node{ID: c.String(), Status: rec.Status, Description: rec.Description, Depth: d})
		return rec, nil
	}

	rootRec, err := lookup(root, 0)
	if err != nil {
		return nil, err
	}
	if rootRec == nil {
		return nil, store.ErrNotFound
	}

	if p := rootRec.Parent; p != nil {
		if _, err := lookup(*p, 0); err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, Edge{From: p.String(), To: root.String(), Kind: EdgeParent})
	}
	for _, m := range rootRec.Children {
		if _, err := lookup(m, 1); err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, Edge{From: root.String(), To: m.String(), Kind: EdgeModule})
	}

	frontier := []*artifact.Record{rootRec}
	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []*artifact.Record
		for _, rec := range frontier {
			for _, dep := range rec.Dependencies {
				g.Edges = append(g.Edges, Edge{
					From:  rec.Coordinate.String(),
					To:    dep.Coordinate.String(),
					Kind:  EdgeDependency,
					Scope: dep.Scope,
				})
				child, err := lookup(dep.Coordinate, d)
				if err != nil {
					return nil, err
				}
				if child != nil {
					next = append(next, child)
				}
			}
		}
		frontier = next
	}
	return g, nil
}
