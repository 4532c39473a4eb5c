// Package nodelink renders mystery graphs as node-link diagrams.
//
// # Overview
//
// A derived [graph.Graph] is written as Graphviz DOT and laid out with a
// force-directed engine (fdp by default). Each node kind gets its own shape
// and colour:
//
//	start          gold star
//	end            green double octagon
//	red-herring    red rounded box
//	locked-puzzle  dashed blue component
//	lock           dashed blue rounded box
//	puzzle         component
//	button         ellipse
//
// Key edges are bold gold arrows; reveal edges are dashed grey arrows.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.EngineFDP)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot, nodelink.EngineFDP)
//	png, err := nodelink.RenderPNG(ctx, dot, nodelink.EngineFDP, 2.0)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
//
// [graph.Graph]: github.com/matzehuels/mysterygraph/pkg/graph.Graph
package nodelink
