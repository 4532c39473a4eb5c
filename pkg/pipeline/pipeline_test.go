package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/mysterygraph/pkg/cache"
	mgerrors "github.com/matzehuels/mysterygraph/pkg/errors"
	"github.com/matzehuels/mysterygraph/pkg/graph"
	"github.com/matzehuels/mysterygraph/pkg/mystery"
	"github.com/matzehuels/mysterygraph/pkg/validate"
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

// studyNoGoal drops the door's completion so nothing reaches the goal.
const studyNoGoal = `
FinalGoalId: escape
InitialInteractableId: desk
Interactables:
  - Id: desk
    OnInteractionCompletion: [door]
  - Id: door
`

// orphanKey hands out a key nobody requires.
const orphanKey = `
FinalGoalId: escape
InitialInteractableId: desk
Interactables:
  - Id: desk
    OnInteractionCompletion: [coin, escape]
Keys:
  - Id: coin
`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateEngine(t *testing.T) {
	tests := []struct {
		engine  string
		wantErr bool
	}{
		{"fdp", false},
		{"neato", false},
		{"sfdp", false},
		{"dot", false},
		{"circo", false},
		{"twopi-ish", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateEngine(tt.engine)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEngine(%q) error = %v, wantErr %v", tt.engine, err, tt.wantErr)
		}
	}
}

func TestOptionsValidateForCheck(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForCheck(); err != nil {
		t.Fatalf("empty format should default: %v", err)
	}
	if opts.Format != mystery.FormatYAML {
		t.Errorf("Format = %q, want yaml", opts.Format)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	opts = Options{Format: "xml"}
	if err := opts.ValidateForCheck(); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Format: "yml"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	before := opts.LayoutKeyOpts()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.LayoutKeyOpts() != before {
		t.Error("layout options changed on second call")
	}
	if opts.Format != mystery.FormatYAML {
		t.Errorf("Format = %q, want yaml", opts.Format)
	}
}

func TestSetLayoutDefaults(t *testing.T) {
	opts := Options{}
	opts.SetLayoutDefaults()

	if opts.Engine != DefaultEngine {
		t.Errorf("Engine should be %s, got %s", DefaultEngine, opts.Engine)
	}
	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %f, got %f", DefaultWidth, opts.Width)
	}
	if opts.Height != DefaultHeight {
		t.Errorf("Height should be %f, got %f", DefaultHeight, opts.Height)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Scale != 2 {
		t.Errorf("Scale should be 2, got %v", opts.Scale)
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"bad engine", Options{Engine: "magic"}, true},
		{"bad format", Options{Formats: []string{"gif"}}, true},
		{"negative width", Options{Width: -1}, true},
		{"negative scale", Options{Scale: -2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForRender()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForRender() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Scale: 3}
	if got := opts.ArtifactKeyOpts(FormatPNG); got.Scale != 3 {
		t.Errorf("png key scale = %v, want 3", got.Scale)
	}
	if got := opts.ArtifactKeyOpts(FormatSVG); got.Scale != 0 {
		t.Errorf("svg key should ignore scale, got %v", got.Scale)
	}
}

func TestCheck(t *testing.T) {
	ctx := context.Background()

	result, err := Check(ctx, []byte(studyYAML), Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !result.Valid() {
		t.Errorf("unexpected findings: %v", result.Findings)
	}
	if len(result.DocumentHash) != 64 {
		t.Errorf("DocumentHash = %q", result.DocumentHash)
	}

	result, err = Check(ctx, []byte(studyNoGoal), Options{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if result.Valid() || result.Findings[0].Title != validate.TitleNoGoal {
		t.Errorf("Findings = %v, want No Goal", result.Findings)
	}
}

func TestCheckHashIgnoresFormat(t *testing.T) {
	ctx := context.Background()
	a, err := Check(ctx, []byte(studyYAML), Options{})
	if err != nil {
		t.Fatal(err)
	}
	asJSON, err := mystery.Encode(a.Document, mystery.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Check(ctx, asJSON, Options{Format: mystery.FormatJSON})
	if err != nil {
		t.Fatal(err)
	}
	if a.DocumentHash != b.DocumentHash {
		t.Error("the same document in two formats should hash the same")
	}
}

func TestCheckErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Check(ctx, []byte("FinalGoalId: [unclosed"), Options{})
	if !errors.Is(err, mystery.ErrParse) {
		t.Fatalf("err = %v, want parse error", err)
	}
	findings, ok := ErrorFindings(err)
	if !ok || len(findings) != 1 || findings[0].Title != "YAML parsing exception" {
		t.Errorf("ErrorFindings = %v, %v", findings, ok)
	}

	_, err = Check(ctx, []byte("FinalGoalId: escape\nInteractables: []\n"), Options{})
	if !errors.Is(err, mystery.ErrSchema) {
		t.Fatalf("err = %v, want schema error", err)
	}
	findings, ok = ErrorFindings(err)
	if !ok || len(findings) == 0 || !strings.HasPrefix(findings[0].Title, "/") {
		t.Errorf("ErrorFindings = %v, %v", findings, ok)
	}

	if _, ok := ErrorFindings(errors.New("disk full")); ok {
		t.Error("unrelated errors should not convert to findings")
	}

	_, err = Check(ctx, []byte(studyYAML), Options{Format: "xml"})
	if !mgerrors.Is(err, mgerrors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "study.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	data, format, err := ReadSource(context.Background(), nil, path)
	if err != nil {
		t.Fatalf("ReadSource: %v", err)
	}
	if string(data) != "{}" || format != mystery.FormatJSON {
		t.Errorf("ReadSource = %q, %q", data, format)
	}

	_, _, err = ReadSource(context.Background(), nil, filepath.Join(dir, "missing.yml"))
	if !mgerrors.Is(err, mgerrors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

// countingCache wraps a map and counts hits.
type countingCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newCountingCache() *countingCache {
	return &countingCache{data: make(map[string][]byte)}
}

func (c *countingCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *countingCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *countingCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *countingCache) Close() error { return nil }

var _ cache.Cache = (*countingCache)(nil)

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	c := newCountingCache()
	r := NewRunner(c, nil, nil)
	opts := Options{Formats: []string{FormatDOT, FormatJSON}}

	result, err := r.Execute(ctx, []byte(studyYAML), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("unexpected findings: %v", result.Findings)
	}
	if result.Graph.NodeCount() != 4 || result.Graph.EdgeCount() != 5 {
		t.Errorf("graph = %d nodes, %d edges; want 4, 5", result.Graph.NodeCount(), result.Graph.EdgeCount())
	}
	if result.Stats.NodeCount != 4 {
		t.Errorf("Stats.NodeCount = %d", result.Stats.NodeCount)
	}
	if !strings.Contains(string(result.Artifacts[FormatDOT]), "layout=fdp") {
		t.Errorf("dot artifact missing engine:\n%s", result.Artifacts[FormatDOT])
	}
	layout, err := graph.UnmarshalLayout(result.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(layout.Nodes) != 4 {
		t.Errorf("layout nodes = %d", len(layout.Nodes))
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}

	again, err := r.Execute(ctx, []byte(studyYAML), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", again.CacheInfo)
	}

	opts.Refresh = true
	refreshed, err := r.Execute(ctx, []byte(studyYAML), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if refreshed.CacheInfo.LayoutHit || refreshed.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerExecuteFindings(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	result, err := r.Execute(context.Background(), []byte(studyNoGoal), Options{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Valid() {
		t.Fatal("expected findings")
	}
	if !result.Graph.IsEmpty() || len(result.Artifacts) != 0 || result.Layout.DOT != "" {
		t.Error("a document with findings must not produce a graph, layout or artifact")
	}
}

func TestRunnerExecuteInconsistent(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	result, err := r.Execute(context.Background(), []byte(orphanKey), Options{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("unexpected findings: %v", result.Findings)
	}
	if !errors.Is(result.DeriveError, graph.ErrInconsistent) {
		t.Errorf("DeriveError = %v, want ErrInconsistent", result.DeriveError)
	}
	if !result.Graph.IsEmpty() || len(result.Artifacts) != 0 {
		t.Error("an inconsistent derivation must leave the graph and artifacts empty")
	}
}

func TestRunnerExecuteParseError(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), []byte(":\n  - ["), Options{}); err == nil {
		t.Error("expected parse error")
	}
	if _, err := r.Execute(context.Background(), []byte(studyYAML), Options{Engine: "magic"}); err == nil {
		t.Error("expected options error")
	}
}
