package validate

import (
	"fmt"

	"github.com/matzehuels/mysterygraph/pkg/mystery"
)

// Finding titles.
const (
	TitleDuplicateID       = "Duplicate Id"
	TitleNoStart           = "No Starting Interactable"
	TitleNoGoal            = "No Goal"
	TitleDanglingReference = "Dangling Reference"
	TitleNoReference       = "No reference"
)

// Finding is one semantic defect.
type Finding struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	return f.Title + ": " + f.Message
}

type idSet map[string]struct{}

func (s idSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) add(id string) { s[id] = struct{}{} }

// Document returns the findings for doc in stage order. A nil document
// yields no findings.
func Document(doc *mystery.Document) []Finding {
	if doc == nil {
		return nil
	}
	var findings []Finding

	ids := make(idSet, len(doc.Interactables)+len(doc.Keys)+1)
	record := func(id string) {
		if ids.has(id) {
			findings = append(findings, Finding{
				Title:   TitleDuplicateID,
				Message: fmt.Sprintf("Id '%s' already exists elseware in document.", id),
			})
			return
		}
		ids.add(id)
	}

	for _, it := range doc.Interactables {
		record(it.ID)
	}
	record(doc.FinalGoalID)

	if !ids.has(doc.InitialInteractableID) {
		findings = append(findings, Finding{
			Title:   TitleNoStart,
			Message: "Initial interactable specified by InitialInteractableId is not present in Interactables.",
		})
	}

	keyIDs := make(idSet, len(doc.Keys))
	for _, k := range doc.Keys {
		record(k.ID)
		keyIDs.add(k.ID)
	}

	if len(findings) > 0 {
		return findings
	}
	if f, ok := checkGoal(doc); !ok {
		return []Finding{f}
	}
	if findings = checkReferences(doc, ids, keyIDs); len(findings) > 0 {
		return findings
	}
	return checkIslands(doc)
}

// Valid reports whether doc has no findings.
func Valid(doc *mystery.Document) bool {
	return len(Document(doc)) == 0
}

func checkGoal(doc *mystery.Document) (Finding, bool) {
	for _, it := range doc.Interactables {
		for _, target := range it.OnInteractionCompletion {
			if target == doc.FinalGoalID {
				return Finding{}, true
			}
		}
	}
	return Finding{
		Title:   TitleNoGoal,
		Message: "No interactables list FinalGoalId as an interaction completion.",
	}, false
}

func checkReferences(doc *mystery.Document, ids, keyIDs idSet) []Finding {
	var findings []Finding
	for _, it := range doc.Interactables {
		for _, key := range it.KeysRequired {
			if !keyIDs.has(key) {
				findings = append(findings, Finding{
					Title:   TitleDanglingReference,
					Message: fmt.Sprintf("Interactable '%s' references key '%s' in keys required which does not exist.", it.ID, key),
				})
			}
		}
		for _, target := range it.OnInteractionCompletion {
			if !ids.has(target) {
				findings = append(findings, Finding{
					Title:   TitleDanglingReference,
					Message: fmt.Sprintf("Interactable '%s' references '%s' in interaction completion which does not exist.", it.ID, target),
				})
			}
		}
	}
	return findings
}

func checkIslands(doc *mystery.Document) []Finding {
	referenced := idSet{doc.InitialInteractableID: {}}
	for _, it := range doc.Interactables {
		for _, target := range it.OnInteractionCompletion {
			referenced.add(target)
		}
	}

	var findings []Finding
	island := func(id string) {
		if !referenced.has(id) {
			findings = append(findings, Finding{
				Title:   TitleNoReference,
				Message: fmt.Sprintf("There is no reference to item '%s' currently", id),
			})
		}
	}
	for _, k := range doc.Keys {
		island(k.ID)
	}
	for _, it := range doc.Interactables {
		island(it.ID)
	}
	return findings
}
