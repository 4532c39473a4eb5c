package nodelink

import (
	"fmt"

	"github.com/matzehuels/mysterygraph/pkg/graph"
)

// Export packages a DOT string and the graph it was built from into the
// serialization format.
//
// Graphviz computes positions at render time, so the layout holds no
// coordinates. Width and height are the rendered SVG size when known.
func Export(dot string, g graph.Graph, opts Options, width, height float64) graph.Layout {
	engine := opts.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	return graph.Layout{
		Engine: engine,
		Width:  width,
		Height: height,
		DOT:    dot,
		Nodes:  g.Nodes,
		Edges:  g.Edges,
	}
}

// Parse extracts the DOT string and engine from a serialized layout.
func Parse(layout graph.Layout) (dot, engine string, err error) {
	if layout.DOT == "" {
		return "", "", fmt.Errorf("nodelink layout must contain DOT string")
	}
	engine = layout.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	if err := ValidateEngine(engine); err != nil {
		return "", "", err
	}
	return layout.DOT, engine, nil
}
