// Package validate checks mystery documents for graph-level defects that a
// shape schema cannot express.
//
// [Document] runs five stages over a parsed, shape-valid document:
//
//  1. Duplicate Id: the id namespace spans interactables, the final goal and
//     keys; every repeated occurrence is reported
//  2. No Starting Interactable: InitialInteractableId must name an
//     interactable (or the final goal)
//  3. No Goal: some interactable must hand out FinalGoalId on completion
//  4. Dangling Reference: KeysRequired entries must name keys, completion
//     targets must name any known id
//  5. No reference: every key and interactable must be the initial
//     interactable or some completion target
//
// Stages 1 and 2 always run. Each later stage runs only while no finding has
// been produced, since it relies on the integrity the earlier stages check.
//
// Findings carry no severity: a non-empty result means the document must
// not be visualized.
//
// [Document] is pure and safe for concurrent use.
package validate
