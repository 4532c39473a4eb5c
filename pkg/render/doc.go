// Package render converts rendered mystery graphs between output formats.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.EngineFDP)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage turns a derived mystery graph into Graphviz DOT
// and renders it with a force-directed engine.
//
// [nodelink]: github.com/matzehuels/mysterygraph/pkg/render/nodelink
package render
