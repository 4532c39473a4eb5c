package mystery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Parse decodes a document in the given format.
//
// Decoding runs in two passes: the source is first decoded into a generic
// tree and shape-checked, then decoded into a typed [Document]. Returns a
// [*ParseError] for malformed input and a [*SchemaError] listing every shape
// violation otherwise.
func Parse(data []byte, format Format) (*Document, error) {
	tree, err := decodeTree(data, format)
	if err != nil {
		return nil, err
	}
	if violations := checkShape(tree); len(violations) > 0 {
		return nil, &SchemaError{Violations: violations}
	}

	var doc Document
	if err := decodeTyped(data, format, &doc); err != nil {
		return nil, &ParseError{Format: format, Msg: err.Error(), Err: err}
	}
	return &doc, nil
}

// ParseReader reads r fully and parses it.
func ParseReader(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data, format)
}

// ParseFile reads and parses a document, choosing the format by extension.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, FormatFromPath(path))
}

// Encode serializes a document in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
	return buf.Bytes(), nil
}

func decodeTree(data []byte, format Format) (any, error) {
	var tree any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, &ParseError{Format: format, Msg: err.Error(), Err: err}
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&tree); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, &ParseError{Format: format, Msg: jsonErrorMessage(err), Err: err}
		}
		if dec.More() {
			return nil, &ParseError{Format: format, Msg: "unexpected data after top-level value"}
		}
	case FormatTOML:
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, &ParseError{Format: format, Msg: err.Error(), Err: err}
		}
		tree = normalizeTree(m)
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
	return tree, nil
}

func decodeTyped(data []byte, format Format, doc *Document) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(data, doc)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(doc)
	case FormatTOML:
		_, err := toml.Decode(string(data), doc)
		return err
	}
	return fmt.Errorf("unsupported document format %q", format)
}

func jsonErrorMessage(err error) string {
	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		return fmt.Sprintf("malformed JSON at offset %d: %v", syntaxErr.Offset, err)
	}
	return err.Error()
}

// normalizeTree rewrites TOML's array-of-tables values ([]map[string]any)
// into []any so the shape check sees the same tree for every format.
func normalizeTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeTree(child)
		}
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = normalizeTree(child)
		}
		return out
	case []any:
		for i, child := range t {
			t[i] = normalizeTree(child)
		}
		return t
	default:
		return v
	}
}
