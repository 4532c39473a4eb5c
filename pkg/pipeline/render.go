package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/mysterygraph/pkg/graph"
	"github.com/matzehuels/mysterygraph/pkg/render"
	"github.com/matzehuels/mysterygraph/pkg/render/nodelink"
)

// RenderLayout generates output artifacts in the requested formats.
// The SVG is rendered at most once and reused for PNG and PDF.
func RenderLayout(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	dot, engine, err := nodelink.Parse(layout)
	if err != nil {
		return nil, err
	}

	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		svg, err = nodelink.RenderSVG(ctx, dot, engine)
		return svg, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = svgOnce()
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			data, err = graph.MarshalLayout(layout)
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
