package mystery

import _ "embed"

//go:embed mystery.schema.json
var schemaJSON []byte

// Schema returns the JSON Schema describing the document shape. The shape
// check applied by [Parse] enforces the same rules.
func Schema() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}
