package graph

import (
	"errors"
	"fmt"

	"github.com/matzehuels/mysterygraph/pkg/mystery"
)

// ErrInconsistent wraps every error returned by [Derive].
var ErrInconsistent = errors.New("inconsistent document")

type unlock struct {
	target      string
	description string
}

// Derive builds the visualization graph for doc.
//
// The result has one node per interactable followed by the synthetic goal
// node. A completion target that names a key some interactable requires fans
// out into one key edge per such interactable; any other target becomes a
// single reveal edge. Keys never appear as nodes.
//
// Derive expects a document without validation findings. If the document is
// still inconsistent (for example a completion hands out a key that nothing
// requires, so the edge would point at no node) it returns an empty Graph
// and an error wrapping [ErrInconsistent]. It never returns a partial graph.
func Derive(doc *mystery.Document) (Graph, error) {
	if doc == nil {
		return Graph{}, fmt.Errorf("%w: nil document", ErrInconsistent)
	}

	b := newBuilder(len(doc.Interactables) + 1)
	for _, it := range doc.Interactables {
		n := Node{
			Name:         it.ID,
			Complexity:   it.Complexity(),
			Description:  it.DescriptionOr(NoDescription),
			IsStart:      it.ID == doc.InitialInteractableID,
			Locked:       it.Locked(),
			IsRedHerring: len(it.OnInteractionCompletion) == 0,
		}
		if err := b.addNode(n); err != nil {
			return Graph{}, fmt.Errorf("%w: interactable %q: %w", ErrInconsistent, it.ID, err)
		}
	}
	goal := Node{
		Name:        doc.FinalGoalID,
		Complexity:  mystery.DefaultComplexity,
		Description: GoalDescription,
		IsEnd:       true,
	}
	if err := b.addNode(goal); err != nil {
		return Graph{}, fmt.Errorf("%w: goal %q: %w", ErrInconsistent, doc.FinalGoalID, err)
	}

	unlocks := unlocksByKey(doc)
	for _, it := range doc.Interactables {
		for _, target := range it.OnInteractionCompletion {
			if err := addCompletion(b, it.ID, target, unlocks[target]); err != nil {
				return Graph{}, fmt.Errorf("%w: %q -> %q: %w", ErrInconsistent, it.ID, target, err)
			}
		}
	}
	return b.graph(), nil
}

func addCompletion(b *builder, source, target string, via []unlock) error {
	if len(via) == 0 {
		return b.addEdge(Edge{Source: source, Target: target, Description: RevealDescription})
	}
	for _, u := range via {
		if err := b.addEdge(Edge{Source: source, Target: u.target, IsKey: true, Description: u.description}); err != nil {
			return err
		}
	}
	return nil
}

// unlocksByKey maps each required key id to the interactables it unlocks,
// in document order.
func unlocksByKey(doc *mystery.Document) map[string][]unlock {
	descriptions := make(map[string]string, len(doc.Keys))
	for _, k := range doc.Keys {
		descriptions[k.ID] = k.DescriptionOr(NoDescription)
	}

	out := make(map[string][]unlock)
	for _, it := range doc.Interactables {
		for _, key := range it.KeysRequired {
			desc, ok := descriptions[key]
			if !ok {
				desc = NoDescription
			}
			out[key] = append(out[key], unlock{target: it.ID, description: desc})
		}
	}
	return out
}
