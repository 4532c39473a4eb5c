// Package mystery defines the mystery document model and its loaders.
//
// A mystery is a puzzle graph: interactables the player completes, keys that
// gate interactables, and a final goal that at least one interactable must
// hand out on completion. This package owns the typed [Document] and the
// structural layer in front of the semantic checks in pkg/validate:
//
//   - [Parse] decodes YAML, JSON or TOML into a [Document]
//   - the shape check rejects documents whose fields are missing or mistyped
//     before they reach any semantic code
//   - [Schema] exposes the JSON Schema the shape check implements
//
// # Formats
//
// YAML is the native format. The same document in JSON or TOML uses the same
// PascalCase field names:
//
//	FinalGoalId: escape
//	InitialInteractableId: desk
//	Interactables:
//	  - Id: desk
//	    OnInteractionCompletion: [brass-key]
//	  - Id: door
//	    KeysRequired: [brass-key]
//	    OnInteractionCompletion: [escape]
//	Keys:
//	  - Id: brass-key
//	    Description: A small brass key
//
// # Errors
//
// Syntax failures are reported as [*ParseError] and shape failures as
// [*SchemaError]. Both unwrap to sentinels ([ErrParse], [ErrSchema]) for use
// with errors.Is.
package mystery
