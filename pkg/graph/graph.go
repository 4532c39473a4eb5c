package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a Graph to indented JSON bytes.
// Node and edge order is preserved, so output is deterministic.
func MarshalGraph(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a Graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// WriteGraph writes a Graph as JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(g Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the decoded Graph.
// Returns an error if an edge references a node that does not exist.
func ReadGraphFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
// Use ReadGraphFile for files or pass bytes.NewReader for in-memory data.
func ReadGraph(r io.Reader) (Graph, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g Graph, w io.Writer) error {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return Graph{}, fmt.Errorf("decode: %w", err)
	}

	b := newBuilder(len(data.Nodes))
	for _, n := range data.Nodes {
		if err := b.addNode(n); err != nil {
			return Graph{}, fmt.Errorf("add node %q: %w", n.Name, err)
		}
	}
	for _, e := range data.Edges {
		if err := b.addEdge(e); err != nil {
			return Graph{}, fmt.Errorf("add edge %s→%s: %w", e.Source, e.Target, err)
		}
	}
	return b.graph(), nil
}
