package graph

import (
	"encoding/json"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Fixed descriptions used when the document does not provide one.
const (
	NoDescription     = "No description"
	GoalDescription   = "End of mystery"
	RevealDescription = "Arrow indicates a reveal upon interaction completion"
)

// Node kinds, in the precedence [Node.Kind] applies them.
const (
	KindStart        = "start"
	KindEnd          = "end"
	KindRedHerring   = "red-herring"
	KindLockedPuzzle = "locked-puzzle"
	KindLock         = "lock"
	KindPuzzle       = "puzzle"
	KindButton       = "button"
)

// Edge kinds.
const (
	EdgeKindKey    = "key"
	EdgeKindReveal = "reveal"
)

// =============================================================================
// Graph - Derived Visualization Model
// =============================================================================

// Graph is the visualization model derived from a mystery document.
//
// Graphs are plain values: nothing in them refers back to the document, and
// renderers may copy or mutate them freely.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// NodeCount returns the number of nodes.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// IsEmpty reports whether the graph has no nodes.
func (g Graph) IsEmpty() bool { return len(g.Nodes) == 0 }

// Node returns the node with the given name.
func (g Graph) Node(name string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

// Start returns the start node, if any.
func (g Graph) Start() (Node, bool) {
	for _, n := range g.Nodes {
		if n.IsStart {
			return n, true
		}
	}
	return Node{}, false
}

// Goal returns the synthetic goal node, if any.
func (g Graph) Goal() (Node, bool) {
	for _, n := range g.Nodes {
		if n.IsEnd {
			return n, true
		}
	}
	return Node{}, false
}

// Outgoing returns the edges leaving the named node, in derivation order.
func (g Graph) Outgoing(name string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == name {
			out = append(out, e)
		}
	}
	return out
}

// KeyEdges returns the number of key edges.
func (g Graph) KeyEdges() int {
	n := 0
	for _, e := range g.Edges {
		if e.IsKey {
			n++
		}
	}
	return n
}

// =============================================================================
// Node
// =============================================================================

// Node is one interactable, or the synthetic goal.
type Node struct {
	Name         string  `json:"name" bson:"name"`
	Complexity   float64 `json:"complexity" bson:"complexity"`
	Description  string  `json:"description" bson:"description"`
	IsStart      bool    `json:"is_start" bson:"is_start"`
	IsEnd        bool    `json:"is_end" bson:"is_end"`
	Locked       bool    `json:"locked" bson:"locked"`
	IsRedHerring bool    `json:"is_red_herring" bson:"is_red_herring"`
}

// Kind classifies the node for display. Start and end win over everything;
// a red herring wins over locking; complexity above 1 marks a puzzle.
func (n Node) Kind() string {
	switch {
	case n.IsStart:
		return KindStart
	case n.IsEnd:
		return KindEnd
	case n.IsRedHerring:
		return KindRedHerring
	case n.Locked && n.Complexity > 1:
		return KindLockedPuzzle
	case n.Locked:
		return KindLock
	case n.Complexity > 1:
		return KindPuzzle
	default:
		return KindButton
	}
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed relation between two nodes. A key edge means the source
// hands out a key the target requires; any other edge is a reveal.
type Edge struct {
	Source      string `json:"source" bson:"source"`
	Target      string `json:"target" bson:"target"`
	IsKey       bool   `json:"is_key" bson:"is_key"`
	Description string `json:"description" bson:"description"`
}

// Kind returns EdgeKindKey or EdgeKindReveal.
func (e Edge) Kind() string {
	if e.IsKey {
		return EdgeKindKey
	}
	return EdgeKindReveal
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}
