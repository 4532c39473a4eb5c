package mystery

import (
	"fmt"
	"sort"
	"strconv"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindStringArray
)

type fieldRule struct {
	kind     fieldKind
	required bool
}

var (
	interactableFields = map[string]fieldRule{
		"Id":                      {kind: kindString, required: true},
		"ComplexityScore":         {kind: kindNumber},
		"Description":             {kind: kindString},
		"KeysRequired":            {kind: kindStringArray},
		"OnInteractionCompletion": {kind: kindStringArray},
	}
	keyFields = map[string]fieldRule{
		"Id":          {kind: kindString, required: true},
		"Description": {kind: kindString},
	}
	rootScalars = map[string]fieldRule{
		"FinalGoalId":           {kind: kindString, required: true},
		"InitialInteractableId": {kind: kindString, required: true},
	}
)

// checkShape validates a generic decoded tree against the mystery schema and
// returns every violation in a stable order.
func checkShape(tree any) []Violation {
	var out []Violation
	root, ok := tree.(map[string]any)
	if !ok {
		return []Violation{{Path: "/", Message: "must be object"}}
	}

	for _, name := range sortedKeys(root) {
		switch name {
		case "FinalGoalId", "InitialInteractableId", "Interactables", "Keys":
		default:
			out = append(out, additional("", name))
		}
	}
	for _, name := range []string{"FinalGoalId", "InitialInteractableId"} {
		out = append(out, checkField("", name, root, rootScalars[name])...)
	}

	items, present := root["Interactables"]
	if !present {
		out = append(out, Violation{Path: "/", Message: "must have required property 'Interactables'"})
	} else {
		out = append(out, checkObjects("/Interactables", items, interactableFields)...)
	}
	if keys, present := root["Keys"]; present {
		out = append(out, checkObjects("/Keys", keys, keyFields)...)
	}
	return out
}

func checkObjects(path string, v any, fields map[string]fieldRule) []Violation {
	list, ok := v.([]any)
	if !ok {
		return []Violation{{Path: path, Message: "must be array"}}
	}
	var out []Violation
	for i, item := range list {
		itemPath := path + "/" + strconv.Itoa(i)
		obj, ok := item.(map[string]any)
		if !ok {
			out = append(out, Violation{Path: itemPath, Message: "must be object"})
			continue
		}
		for _, name := range sortedKeys(obj) {
			if _, known := fields[name]; !known {
				out = append(out, additional(itemPath, name))
			}
		}
		for _, name := range sortedRuleKeys(fields) {
			out = append(out, checkField(itemPath, name, obj, fields[name])...)
		}
	}
	return out
}

func checkField(path, name string, obj map[string]any, rule fieldRule) []Violation {
	v, present := obj[name]
	if !present {
		if rule.required {
			return []Violation{{Path: orRoot(path), Message: fmt.Sprintf("must have required property '%s'", name)}}
		}
		return nil
	}
	fieldPath := path + "/" + name
	switch rule.kind {
	case kindString:
		if _, ok := v.(string); !ok {
			return []Violation{{Path: fieldPath, Message: "must be string"}}
		}
	case kindNumber:
		if !isNumber(v) {
			return []Violation{{Path: fieldPath, Message: "must be number"}}
		}
	case kindStringArray:
		list, ok := v.([]any)
		if !ok {
			return []Violation{{Path: fieldPath, Message: "must be array"}}
		}
		var out []Violation
		for i, elem := range list {
			if _, ok := elem.(string); !ok {
				out = append(out, Violation{Path: fieldPath + "/" + strconv.Itoa(i), Message: "must be string"})
			}
		}
		return out
	}
	return nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func additional(path, name string) Violation {
	return Violation{Path: orRoot(path), Message: fmt.Sprintf("must NOT have additional property '%s'", name)}
}

func orRoot(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedRuleKeys(m map[string]fieldRule) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
