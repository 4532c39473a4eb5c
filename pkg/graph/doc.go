// Package graph derives and serializes the visualization graph of a mystery.
//
// # Derivation
//
// [Derive] turns a validated mystery document into a [Graph]:
//
//   - one [Node] per interactable, flagged as start, locked or red herring
//   - one synthetic goal node named after FinalGoalId
//   - a reveal [Edge] for every completion target that is not a handed-out key
//   - a key [Edge] from the completing interactable to every interactable the
//     handed-out key unlocks
//
// Keys are never nodes. A completion naming a key that two interactables
// require produces two edges, one per unlocked interactable.
//
// Derivation is all or nothing: when the document is inconsistent Derive
// returns an empty Graph and an error wrapping [ErrInconsistent].
//
// # Serialization
//
// Graphs use a node-link JSON format:
//
//	{
//	  "nodes": [{"name": "desk", "complexity": 1, "is_start": true, ...}],
//	  "edges": [{"source": "desk", "target": "door", "is_key": true, ...}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("study.json")   // File → Graph
//	graph.WriteGraphFile(g, "output.json")      // Graph → File
//	data, _ := graph.MarshalGraph(g)            // Graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)     // []byte → Graph
//
// [Layout] adds the Graphviz DOT source produced by pkg/render/nodelink.
//
// # Concurrency
//
// Derive is pure and safe for concurrent use. Graph values are not shared
// with the document or with each other.
package graph
