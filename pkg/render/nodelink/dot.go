package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mysterygraph/pkg/graph"
	"github.com/matzehuels/mysterygraph/pkg/render"
)

// Graphviz layout engines. The force-directed engines suit mystery graphs,
// which are neither layered nor acyclic.
const (
	EngineFDP   = "fdp"
	EngineNeato = "neato"
	EngineSFDP  = "sfdp"
	EngineCirco = "circo"
	EngineDot   = "dot"
)

// DefaultEngine is the engine used when none is given.
const DefaultEngine = EngineFDP

// ValidEngines is the set of supported layout engines.
var ValidEngines = map[string]bool{
	EngineFDP:   true,
	EngineNeato: true,
	EngineSFDP:  true,
	EngineCirco: true,
	EngineDot:   true,
}

// ValidateEngine checks that an engine name is supported.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return fmt.Errorf("invalid engine: %q (must be one of: fdp, neato, sfdp, circo, dot)", engine)
	}
	return nil
}

// Options configures node-link diagram rendering.
type Options struct {
	// Engine is the Graphviz layout engine written into the DOT source.
	// Defaults to DefaultEngine.
	Engine string

	// Detailed adds the description and complexity to node labels and the
	// key description to key edges. When false, only node names are shown.
	Detailed bool
}

type nodeStyle struct {
	shape string
	style string
	fill  string
	color string
}

var nodeStyles = map[string]nodeStyle{
	graph.KindStart:        {shape: "star", style: "filled", fill: "gold", color: "goldenrod4"},
	graph.KindEnd:          {shape: "doubleoctagon", style: "filled", fill: "palegreen", color: "darkgreen"},
	graph.KindRedHerring:   {shape: "box", style: "rounded,filled", fill: "mistyrose", color: "firebrick"},
	graph.KindLockedPuzzle: {shape: "component", style: "filled,dashed", fill: "lightsteelblue", color: "steelblue4"},
	graph.KindLock:         {shape: "box", style: "rounded,filled,dashed", fill: "lightsteelblue", color: "steelblue4"},
	graph.KindPuzzle:       {shape: "component", style: "filled", fill: "white", color: "black"},
	graph.KindButton:       {shape: "ellipse", style: "filled", fill: "white", color: "black"},
}

// ToDOT converts a mystery graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Node shape and colour follow [graph.Node.Kind]. Nodes grow with their
// complexity. Key edges are bold and gold; reveal edges are dashed and grey.
// Descriptions become tooltips. Output order follows the graph, so equal
// graphs produce identical DOT.
func ToDOT(g graph.Graph, opts Options) string {
	engine := opts.Engine
	if engine == "" {
		engine = DefaultEngine
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  layout=%s;\n", engine)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  K=1.2;\n")
	buf.WriteString("  node [fontname=\"Courier New\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.8];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(fmtNodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(fmtEdgeAttrs(e, opts.Detailed), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	parts := []string{n.Name, n.Description}
	if !n.IsEnd {
		parts = append(parts, "complexity: "+strconv.FormatFloat(n.Complexity, 'g', -1, 64))
	}
	return strings.Join(parts, "\n")
}

func fmtNodeAttrs(n graph.Node, detailed bool) []string {
	kind := n.Kind()
	st := nodeStyles[kind]
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("tooltip=%q", n.Description),
		"shape=" + st.shape,
		fmt.Sprintf("style=%q", st.style),
		"fillcolor=" + st.fill,
		"color=" + st.color,
		"class=" + strconv.Quote(kind),
	}
	if n.Complexity > 1 {
		attrs = append(attrs, fmt.Sprintf("penwidth=%.1f", nodeWeight(n.Complexity)))
	}
	return attrs
}

// nodeWeight maps complexity to a border width, capped so a single outlier
// does not dominate the drawing.
func nodeWeight(complexity float64) float64 {
	return math.Min(1+math.Log2(complexity), 5)
}

func fmtEdgeAttrs(e graph.Edge, detailed bool) []string {
	attrs := []string{fmt.Sprintf("tooltip=%q", e.Description)}
	if e.IsKey {
		attrs = append(attrs, "style=bold", "color=goldenrod", "arrowhead=normal")
		if detailed {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Description), "fontsize=10")
		}
		return attrs
	}
	return append(attrs, "style=dashed", "color=gray40", "arrowhead=open")
}

// RenderSVG renders a DOT graph to SVG using Graphviz with the given engine.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot, engine string) ([]byte, error) {
	if engine == "" {
		engine = DefaultEngine
	}
	if err := ValidateEngine(engine); err != nil {
		return nil, err
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.Layout(engine))

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from its
// origin, dropping the pt units Graphviz emits.
func normalizeViewBox(svg []byte) []byte {
	w, h, ok := Size(svg)
	if !ok {
		return svg
	}
	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Size extracts the viewBox width and height from an SVG document.
func Size(svg []byte) (width, height float64, ok bool) {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return 0, 0, false
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return 0, 0, false
	}
	return w, h, true
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot, engine string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot, engine string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
