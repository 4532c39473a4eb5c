package validate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/mysterygraph/pkg/mystery"
)

func ptr[T any](v T) *T { return &v }

// study is a finding-free document. The desk reveals the door and the
// cabinet and hands out the key both of them need; the door leads out.
func study() *mystery.Document {
	return &mystery.Document{
		FinalGoalID:           "escape",
		InitialInteractableID: "desk",
		Interactables: []mystery.Interactable{
			{ID: "desk", OnInteractionCompletion: []string{"brass-key", "cabinet", "door"}},
			{ID: "door", KeysRequired: []string{"brass-key"}, OnInteractionCompletion: []string{"escape"}},
			{ID: "cabinet", KeysRequired: []string{"brass-key"}},
		},
		Keys: []mystery.Key{{ID: "brass-key", Description: ptr("A small brass key")}},
	}
}

func titles(fs []Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Title
	}
	return out
}

func TestDocument(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *mystery.Document)
		want   []Finding
	}{
		{
			name:   "valid",
			mutate: func(d *mystery.Document) {},
			want:   nil,
		},
		{
			name: "duplicate interactable",
			mutate: func(d *mystery.Document) {
				d.Interactables = append(d.Interactables, mystery.Interactable{ID: "door"})
			},
			want: []Finding{{TitleDuplicateID, "Id 'door' already exists elseware in document."}},
		},
		{
			name: "one finding per repeated occurrence",
			mutate: func(d *mystery.Document) {
				d.Interactables = append(d.Interactables,
					mystery.Interactable{ID: "door"},
					mystery.Interactable{ID: "door"},
				)
			},
			want: []Finding{
				{TitleDuplicateID, "Id 'door' already exists elseware in document."},
				{TitleDuplicateID, "Id 'door' already exists elseware in document."},
			},
		},
		{
			name: "goal collides with interactable",
			mutate: func(d *mystery.Document) {
				d.FinalGoalID = "cabinet"
			},
			want: []Finding{{TitleDuplicateID, "Id 'cabinet' already exists elseware in document."}},
		},
		{
			name: "key collides with goal",
			mutate: func(d *mystery.Document) {
				d.Keys = append(d.Keys, mystery.Key{ID: "escape"})
			},
			want: []Finding{{TitleDuplicateID, "Id 'escape' already exists elseware in document."}},
		},
		{
			name: "missing start",
			mutate: func(d *mystery.Document) {
				d.InitialInteractableID = "X"
			},
			want: []Finding{{TitleNoStart, "Initial interactable specified by InitialInteractableId is not present in Interactables."}},
		},
		{
			name: "start naming a key is missing",
			mutate: func(d *mystery.Document) {
				d.InitialInteractableID = "brass-key"
			},
			want: []Finding{{TitleNoStart, "Initial interactable specified by InitialInteractableId is not present in Interactables."}},
		},
		{
			name: "duplicate and missing start both reported",
			mutate: func(d *mystery.Document) {
				d.Interactables = append(d.Interactables, mystery.Interactable{ID: "desk"})
				d.InitialInteractableID = "nowhere"
			},
			want: []Finding{
				{TitleDuplicateID, "Id 'desk' already exists elseware in document."},
				{TitleNoStart, "Initial interactable specified by InitialInteractableId is not present in Interactables."},
			},
		},
		{
			name: "no goal",
			mutate: func(d *mystery.Document) {
				d.Interactables[1].OnInteractionCompletion = nil
			},
			want: []Finding{{TitleNoGoal, "No interactables list FinalGoalId as an interaction completion."}},
		},
		{
			name: "dangling key",
			mutate: func(d *mystery.Document) {
				d.Interactables[2].KeysRequired = []string{"ghostkey"}
			},
			want: []Finding{{TitleDanglingReference, "Interactable 'cabinet' references key 'ghostkey' in keys required which does not exist."}},
		},
		{
			name: "key required must be a key",
			mutate: func(d *mystery.Document) {
				d.Interactables[2].KeysRequired = []string{"desk"}
			},
			want: []Finding{{TitleDanglingReference, "Interactable 'cabinet' references key 'desk' in keys required which does not exist."}},
		},
		{
			name: "all dangling references collected",
			mutate: func(d *mystery.Document) {
				d.Interactables[0].KeysRequired = []string{"ghostkey"}
				d.Interactables[0].OnInteractionCompletion = append(d.Interactables[0].OnInteractionCompletion, "attic")
				d.Interactables[2].OnInteractionCompletion = []string{"cellar"}
			},
			want: []Finding{
				{TitleDanglingReference, "Interactable 'desk' references key 'ghostkey' in keys required which does not exist."},
				{TitleDanglingReference, "Interactable 'desk' references 'attic' in interaction completion which does not exist."},
				{TitleDanglingReference, "Interactable 'cabinet' references 'cellar' in interaction completion which does not exist."},
			},
		},
		{
			name: "unreferenced key",
			mutate: func(d *mystery.Document) {
				d.Keys = append(d.Keys, mystery.Key{ID: "silver-key"})
			},
			want: []Finding{{TitleNoReference, "There is no reference to item 'silver-key' currently"}},
		},
		{
			name: "unlocking alone does not reference",
			mutate: func(d *mystery.Document) {
				d.Interactables[0].OnInteractionCompletion = []string{"brass-key", "cabinet"}
			},
			want: []Finding{{TitleNoReference, "There is no reference to item 'door' currently"}},
		},
		{
			name: "keys reported before interactables",
			mutate: func(d *mystery.Document) {
				d.Interactables = append(d.Interactables, mystery.Interactable{ID: "painting", OnInteractionCompletion: []string{"escape"}})
				d.Keys = append(d.Keys, mystery.Key{ID: "silver-key"})
			},
			want: []Finding{
				{TitleNoReference, "There is no reference to item 'silver-key' currently"},
				{TitleNoReference, "There is no reference to item 'painting' currently"},
			},
		},
		{
			name: "duplicate suppresses dangling reference",
			mutate: func(d *mystery.Document) {
				d.Interactables = append(d.Interactables, mystery.Interactable{ID: "door"})
				d.Interactables[2].KeysRequired = []string{"ghostkey"}
			},
			want: []Finding{{TitleDuplicateID, "Id 'door' already exists elseware in document."}},
		},
		{
			name: "no goal suppresses dangling reference and islands",
			mutate: func(d *mystery.Document) {
				d.Interactables[1].OnInteractionCompletion = []string{"attic"}
				d.Keys = append(d.Keys, mystery.Key{ID: "silver-key"})
			},
			want: []Finding{{TitleNoGoal, "No interactables list FinalGoalId as an interaction completion."}},
		},
		{
			name: "dangling reference suppresses islands",
			mutate: func(d *mystery.Document) {
				d.Interactables[2].KeysRequired = []string{"ghostkey"}
				d.Keys = append(d.Keys, mystery.Key{ID: "silver-key"})
			},
			want: []Finding{{TitleDanglingReference, "Interactable 'cabinet' references key 'ghostkey' in keys required which does not exist."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := study()
			tt.mutate(doc)
			got := Document(doc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Document() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocumentDeterministic(t *testing.T) {
	doc := study()
	doc.Keys = append(doc.Keys, mystery.Key{ID: "a"}, mystery.Key{ID: "b"}, mystery.Key{ID: "c"})

	first := Document(doc)
	for i := 0; i < 20; i++ {
		if got := Document(doc); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d = %v, want %v", i, got, first)
		}
	}
}

func TestDocumentDoesNotMutate(t *testing.T) {
	doc := study()
	before := study()
	Document(doc)
	if !reflect.DeepEqual(doc, before) {
		t.Error("Document mutated its input")
	}
}

func TestDocumentMentionsDuplicateID(t *testing.T) {
	doc := study()
	doc.Interactables = append(doc.Interactables, mystery.Interactable{ID: "door"})

	found := false
	for _, f := range Document(doc) {
		if f.Title == TitleDuplicateID && strings.Contains(f.Message, "door") {
			found = true
		}
	}
	if !found {
		t.Error("no Duplicate Id finding mentioning door")
	}
}

func TestDocumentNil(t *testing.T) {
	if got := Document(nil); got != nil {
		t.Errorf("Document(nil) = %v, want nil", got)
	}
}

func TestValid(t *testing.T) {
	if !Valid(study()) {
		t.Errorf("Valid(study) = false, findings %v", titles(Document(study())))
	}
	doc := study()
	doc.FinalGoalID = "desk"
	if Valid(doc) {
		t.Error("Valid(duplicate goal) = true")
	}
}
