package graph

import (
	"errors"
)

var (
	// ErrDuplicateNode is returned when two nodes share a name.
	ErrDuplicateNode = errors.New("duplicate node name")

	// ErrUnknownSource is returned when an edge leaves a node that does not exist.
	ErrUnknownSource = errors.New("unknown source node")

	// ErrUnknownTarget is returned when an edge enters a node that does not exist.
	ErrUnknownTarget = errors.New("unknown target node")
)

// builder accumulates nodes and edges while enforcing that every edge joins
// two known nodes. Names are opaque: the empty string is a valid id. It is
// not safe for concurrent use.
type builder struct {
	nodes []Node
	edges []Edge
	index map[string]int
}

func newBuilder(capacity int) *builder {
	return &builder{
		nodes: make([]Node, 0, capacity),
		index: make(map[string]int, capacity),
	}
}

func (b *builder) addNode(n Node) error {
	if _, exists := b.index[n.Name]; exists {
		return ErrDuplicateNode
	}
	b.index[n.Name] = len(b.nodes)
	b.nodes = append(b.nodes, n)
	return nil
}

// addEdge appends e. Parallel edges are allowed.
func (b *builder) addEdge(e Edge) error {
	if _, ok := b.index[e.Source]; !ok {
		return ErrUnknownSource
	}
	if _, ok := b.index[e.Target]; !ok {
		return ErrUnknownTarget
	}
	b.edges = append(b.edges, e)
	return nil
}

func (b *builder) graph() Graph {
	edges := b.edges
	if edges == nil {
		edges = []Edge{}
	}
	return Graph{Nodes: b.nodes, Edges: edges}
}
