package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/mysterygraph/pkg/pipeline"
)

// nopCloser makes os.Stdout usable as an io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for an empty path and a new file otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// basePath derives the base output path. Without an output it strips the
// extension from input; a known artifact extension on output is stripped too.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactExt is the file extension for an output format. The JSON layout
// gets a double extension so it does not collide with a JSON document.
func artifactExt(format string) string {
	if format == pipeline.FormatJSON {
		return ".layout.json"
	}
	return "." + format
}

// artifactPaths maps each format to the file it is written to. A single
// format with an explicit output goes exactly there.
func artifactPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + artifactExt(f)
	}
	return paths
}

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	nodes     int
	edges     int
	cacheHit  bool
}

// writeArtifacts writes rendered artifacts and reports where they went.
func writeArtifacts(p artifactWriteParams) error {
	paths := artifactPaths(p.formats, p.input, p.output)
	for _, format := range p.formats {
		path := paths[format]
		if err := os.WriteFile(path, p.artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	printSuccess("Rendered %s", filepath.Base(p.input))
	for _, format := range p.formats {
		printFile(paths[format])
	}
	printStats(p.nodes, p.edges, p.cacheHit)
	return nil
}
