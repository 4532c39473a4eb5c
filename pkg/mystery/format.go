package mystery

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a document encoding.
type Format string

// Supported document formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats in preference order.
var Formats = []Format{FormatYAML, FormatJSON, FormatTOML}

// ParseFormat resolves a user supplied format name. "yml" is accepted as an
// alias for YAML and the empty string selects YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported document format %q (use yaml, json or toml)", s)
	}
}

// FormatFromPath picks a format by file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// FormatFromContentType maps an HTTP media type to a format.
// The second result is false for unknown media types.
func FormatFromContentType(ct string) (Format, bool) {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	switch strings.ToLower(strings.TrimSpace(ct)) {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return FormatYAML, true
	case "application/json", "text/json":
		return FormatJSON, true
	case "application/toml", "text/toml", "application/x-toml":
		return FormatTOML, true
	default:
		return "", false
	}
}

// ContentType returns the media type used when serving the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatTOML:
		return "application/toml"
	default:
		return "application/yaml"
	}
}

// Ext returns the canonical file extension, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatTOML:
		return ".toml"
	default:
		return ".yml"
	}
}
