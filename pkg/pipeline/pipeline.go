// Package pipeline provides the mystery processing pipeline for mysterygraph.
//
// The pipeline is shared by the CLI and the HTTP API so both entry points
// behave the same way.
//
// # Architecture
//
// A run consists of four stages:
//
//  1. Check: parse the document, run the shape check and the semantic validator
//  2. Derive: build the visualization graph (only for documents without findings)
//  3. Layout: build the Graphviz DOT source for a force-directed engine
//  4. Render: generate output in various formats (SVG, PNG, PDF, DOT, JSON)
//
// A document with findings never produces a graph, layout or artifact.
// Layout and render results are cached by content hash.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Format:  mystery.FormatYAML,
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    return err // parse or shape error, or a rendering failure
//	}
//	if !result.Valid() {
//	    for _, f := range result.Findings {
//	        fmt.Println(f)
//	    }
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mysterygraph/pkg/cache"
	"github.com/matzehuels/mysterygraph/pkg/graph"
	"github.com/matzehuels/mysterygraph/pkg/mystery"
	"github.com/matzehuels/mysterygraph/pkg/render"
	"github.com/matzehuels/mysterygraph/pkg/render/nodelink"
	"github.com/matzehuels/mysterygraph/pkg/validate"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600.0

	// DefaultEngine is the default Graphviz layout engine.
	DefaultEngine = nodelink.DefaultEngine
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Check options
	Format mystery.Format `json:"format,omitempty"`

	// Layout options
	Engine   string  `json:"engine,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"` // PNG scale factor
	Refresh bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the parsed document.
	Document *mystery.Document

	// DocumentHash is the content hash of the parsed document. Equal
	// documents hash the same regardless of their source format.
	DocumentHash string

	// Findings lists the semantic defects. When non-empty, Graph, Layout
	// and Artifacts are empty.
	Findings []validate.Finding

	// Graph is the derived visualization graph.
	Graph graph.Graph

	// DeriveError is set when derivation hit an internal inconsistency.
	// Graph is empty in that case.
	DeriveError error

	// Layout contains the DOT source and the graph it was built from.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Valid reports whether the document passed validation.
func (r *Result) Valid() bool {
	return len(r.Findings) == 0
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	CheckTime    time.Duration
	DeriveTime   time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
	FindingCount int
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that a layout engine is valid.
func ValidateEngine(engine string) error {
	return nodelink.ValidateEngine(engine)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCheck(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCheck checks the document format and sets its default.
func (o *Options) ValidateForCheck() error {
	f, err := mystery.ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = f
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("invalid frame size %gx%g", o.Width, o.Height)
	}
	return ValidateEngine(o.Engine)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = render.DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if o.Scale < 0 {
		return fmt.Errorf("invalid scale %g", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// NodelinkOptions returns the DOT generation options.
func (o *Options) NodelinkOptions() nodelink.Options {
	return nodelink.Options{Engine: o.Engine, Detailed: o.Detailed}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Engine:   o.Engine,
		Detailed: o.Detailed,
		Width:    o.Width,
		Height:   o.Height,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}
