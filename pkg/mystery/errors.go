package mystery

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error checking via errors.Is().
var (
	// ErrParse indicates the document is not well-formed in its format.
	ErrParse = errors.New("parse error")

	// ErrSchema indicates the document is well-formed but has missing,
	// mistyped or unknown fields.
	ErrSchema = errors.New("schema error")
)

// ParseError reports a syntax failure in the source document.
type ParseError struct {
	Format Format
	Msg    string
	Err    error
}

// Title is the heading shown for the failure, e.g. "YAML parsing exception".
func (e *ParseError) Title() string {
	return strings.ToUpper(string(e.Format)) + " parsing exception"
}

func (e *ParseError) Error() string {
	if e.Msg == "" {
		return ErrParse.Error()
	}
	return fmt.Sprintf("%s: %s", ErrParse.Error(), e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// Violation is a single shape failure located by a slash-separated path into
// the document, e.g. "/Interactables/2/Id".
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Path + " " + v.Message
}

// SchemaError collects every shape violation found in a document.
type SchemaError struct {
	Violations []Violation
}

func (e *SchemaError) Error() string {
	switch len(e.Violations) {
	case 0:
		return ErrSchema.Error()
	case 1:
		return fmt.Sprintf("%s: %s", ErrSchema.Error(), e.Violations[0])
	default:
		return fmt.Sprintf("%s: %s (and %d more)", ErrSchema.Error(), e.Violations[0], len(e.Violations)-1)
	}
}

func (e *SchemaError) Unwrap() error { return ErrSchema }
