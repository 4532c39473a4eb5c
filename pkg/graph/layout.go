package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout - Rendered Visualization Format
// =============================================================================

// Layout is the serialization format for a prepared node-link visualization.
//
// It carries the Graphviz DOT source together with the graph it was built
// from, so a client can either render the DOT itself or draw the nodes and
// edges with its own force-directed layout.
type Layout struct {
	Engine string  `json:"engine" bson:"engine"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	DOT   string `json:"dot" bson:"dot"`
	Nodes []Node `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Edges []Edge `json:"edges,omitempty" bson:"edges,omitempty"`
}

// Graph returns the graph carried by the layout.
func (l Layout) Graph() Graph {
	return Graph{Nodes: l.Nodes, Edges: l.Edges}
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// A layout without a DOT string is rejected.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.DOT == "" {
		return Layout{}, fmt.Errorf("layout must contain DOT string")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
