package mystery

// DefaultComplexity is the weight of an interactable without a ComplexityScore.
const DefaultComplexity = 1.0

// Document is a parsed mystery. Documents are treated as immutable once
// parsed; nothing downstream mutates them.
type Document struct {
	FinalGoalID           string         `json:"FinalGoalId" yaml:"FinalGoalId" toml:"FinalGoalId" bson:"FinalGoalId"`
	InitialInteractableID string         `json:"InitialInteractableId" yaml:"InitialInteractableId" toml:"InitialInteractableId" bson:"InitialInteractableId"`
	Interactables         []Interactable `json:"Interactables" yaml:"Interactables" toml:"Interactables" bson:"Interactables"`
	Keys                  []Key          `json:"Keys,omitempty" yaml:"Keys,omitempty" toml:"Keys,omitempty" bson:"Keys,omitempty"`
}

// Interactable is an action the player can complete.
//
// Optional scalars are pointers so an absent field can be told apart from a
// zero value.
type Interactable struct {
	ID                      string   `json:"Id" yaml:"Id" toml:"Id" bson:"Id"`
	ComplexityScore         *float64 `json:"ComplexityScore,omitempty" yaml:"ComplexityScore,omitempty" toml:"ComplexityScore,omitempty" bson:"ComplexityScore,omitempty"`
	Description             *string  `json:"Description,omitempty" yaml:"Description,omitempty" toml:"Description,omitempty" bson:"Description,omitempty"`
	KeysRequired            []string `json:"KeysRequired,omitempty" yaml:"KeysRequired,omitempty" toml:"KeysRequired,omitempty" bson:"KeysRequired,omitempty"`
	OnInteractionCompletion []string `json:"OnInteractionCompletion,omitempty" yaml:"OnInteractionCompletion,omitempty" toml:"OnInteractionCompletion,omitempty" bson:"OnInteractionCompletion,omitempty"`
}

// Complexity returns the ComplexityScore, or DefaultComplexity when absent.
// No range is enforced; the value is a visualization weight only.
func (i Interactable) Complexity() float64 {
	if i.ComplexityScore == nil {
		return DefaultComplexity
	}
	return *i.ComplexityScore
}

// DescriptionOr returns the description, or fallback when absent.
func (i Interactable) DescriptionOr(fallback string) string {
	if i.Description == nil {
		return fallback
	}
	return *i.Description
}

// Locked reports whether any key gates the interactable.
func (i Interactable) Locked() bool { return len(i.KeysRequired) > 0 }

// Key is a gating token required by zero or more interactables.
type Key struct {
	ID          string  `json:"Id" yaml:"Id" toml:"Id" bson:"Id"`
	Description *string `json:"Description,omitempty" yaml:"Description,omitempty" toml:"Description,omitempty" bson:"Description,omitempty"`
}

// DescriptionOr returns the description, or fallback when absent.
func (k Key) DescriptionOr(fallback string) string {
	if k.Description == nil {
		return fallback
	}
	return *k.Description
}

// Interactable returns the first interactable with the given id.
func (d *Document) Interactable(id string) (Interactable, bool) {
	for _, it := range d.Interactables {
		if it.ID == id {
			return it, true
		}
	}
	return Interactable{}, false
}

// Key returns the first key with the given id.
func (d *Document) Key(id string) (Key, bool) {
	for _, k := range d.Keys {
		if k.ID == id {
			return k, true
		}
	}
	return Key{}, false
}
