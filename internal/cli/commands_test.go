package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mgerrors "github.com/matzehuels/mysterygraph/pkg/errors"
	"github.com/matzehuels/mysterygraph/pkg/graph"
	"github.com/matzehuels/mysterygraph/pkg/mystery"
)

const studyYAML = `
FinalGoalId: escape
InitialInteractableId: desk
Interactables:
  - Id: desk
    OnInteractionCompletion: [brass-key, cabinet, door]
  - Id: door
    ComplexityScore: 3
    KeysRequired: [brass-key]
    OnInteractionCompletion: [escape]
  - Id: cabinet
    KeysRequired: [brass-key]
Keys:
  - Id: brass-key
    Description: A small brass key
`

const studyNoGoal = `
FinalGoalId: escape
InitialInteractableId: desk
Interactables:
  - Id: desk
    OnInteractionCompletion: [door]
  - Id: door
`

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns its output and error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"validate", "graph", "render", "inspect", "convert", "serve", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(out, "mysterygraph") {
		t.Errorf("version output %q should name the program", out)
	}
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		file     string
		args     []string
		wantCode mgerrors.Code
	}{
		{"valid", studyYAML, "study.yml", nil, ""},
		{"findings", studyNoGoal, "study.yml", nil, mgerrors.ErrCodeFindings},
		{"parse error", "FinalGoalId: [", "broken.yml", nil, mgerrors.ErrCodeFindings},
		{"json output", studyYAML, "study.yml", []string{"--json"}, ""},
		{"bad input format", studyYAML, "study.yml", []string{"--input-format", "xml"}, mgerrors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, tt.file, tt.content)
			_, err := execute(t, append([]string{"validate", path}, tt.args...)...)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("validate: %v", err)
				}
				return
			}
			if !mgerrors.Is(err, tt.wantCode) {
				t.Errorf("validate error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestValidateMissingFile(t *testing.T) {
	_, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.yml"))
	if !mgerrors.Is(err, mgerrors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestGraphCommand(t *testing.T) {
	path := writeDoc(t, "study.yml", studyYAML)
	out := filepath.Join(t.TempDir(), "graph.json")

	if _, err := execute(t, "graph", path, "-o", out); err != nil {
		t.Fatalf("graph: %v", err)
	}
	g, err := graph.ReadGraphFile(out)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 5 {
		t.Errorf("graph = %d nodes, %d edges, want 4 and 5", g.NodeCount(), g.EdgeCount())
	}
}

func TestGraphCommandFindings(t *testing.T) {
	path := writeDoc(t, "study.yml", studyNoGoal)
	out := filepath.Join(t.TempDir(), "graph.json")

	_, err := execute(t, "graph", path, "-o", out)
	if !mgerrors.Is(err, mgerrors.ErrCodeFindings) {
		t.Errorf("error = %v, want findings", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no graph should be written for a document with findings")
	}
}

func TestRenderCommand(t *testing.T) {
	path := writeDoc(t, "study.yml", studyYAML)
	base := filepath.Join(t.TempDir(), "diagram")

	if _, err := execute(t, "render", path, "-f", "dot,json", "-e", "neato", "-o", base); err != nil {
		t.Fatalf("render: %v", err)
	}

	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.Contains(string(dot), "layout=neato;") {
		t.Errorf("DOT should use the neato engine:\n%s", dot)
	}

	layout, err := graph.ReadLayoutFile(base + ".layout.json")
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if layout.Engine != "neato" || len(layout.Nodes) != 4 {
		t.Errorf("layout = %s with %d nodes", layout.Engine, len(layout.Nodes))
	}
}

func TestRenderCommandRejectsBadFlags(t *testing.T) {
	path := writeDoc(t, "study.yml", studyYAML)

	if _, err := execute(t, "render", path, "-f", "gif"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := execute(t, "render", path, "-e", "twopi"); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestRenderCommandFindings(t *testing.T) {
	path := writeDoc(t, "study.yml", studyNoGoal)
	_, err := execute(t, "render", path, "-f", "dot", "--no-cache")
	if !mgerrors.Is(err, mgerrors.ErrCodeFindings) {
		t.Errorf("error = %v, want findings", err)
	}
}

func TestConvertCommand(t *testing.T) {
	path := writeDoc(t, "study.yml", studyYAML)
	out := filepath.Join(t.TempDir(), "study.json")

	if _, err := execute(t, "convert", path, "--to", "json", "-o", out); err != nil {
		t.Fatalf("convert: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Fatalf("output is not JSON:\n%s", data)
	}
	doc, err := mystery.Parse(data, mystery.FormatJSON)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if doc.FinalGoalID != "escape" || len(doc.Interactables) != 3 || len(doc.Keys) != 1 {
		t.Errorf("converted document = %+v", doc)
	}
}

func TestConvertCommandRejectsUnknownTarget(t *testing.T) {
	path := writeDoc(t, "study.yml", studyYAML)
	_, err := execute(t, "convert", path, "--to", "xml")
	if !mgerrors.Is(err, mgerrors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestCachePathCommand(t *testing.T) {
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	want, _ := cacheDir()
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	path := writeDoc(t, "study.yml", studyYAML)
	cacheHome := t.TempDir()

	run := func(args ...string) error {
		t.Setenv("XDG_CACHE_HOME", cacheHome)
		root := New(io.Discard, LogInfo).RootCommand()
		root.SetOut(io.Discard)
		root.SetArgs(args)
		return root.ExecuteContext(context.Background())
	}

	if err := run("render", path, "-f", "dot", "-o", filepath.Join(t.TempDir(), "out.dot")); err != nil {
		t.Fatalf("render: %v", err)
	}
	shards, _ := os.ReadDir(filepath.Join(cacheHome, appName))
	if len(shards) == 0 {
		t.Fatal("render should populate the cache")
	}

	if err := run("cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	shards, _ = os.ReadDir(filepath.Join(cacheHome, appName))
	if len(shards) != 0 {
		t.Errorf("cache still has %d entries after clear", len(shards))
	}
}

func TestServeRejectsBadConfig(t *testing.T) {
	cfgPath := writeDoc(t, "config.toml", "[storage]\nbackend = \"s3\"\n")
	_, err := execute(t, "--config", cfgPath, "serve")
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Errorf("serve error = %v, want unknown backend", err)
	}
}
