package pipeline

import (
	"github.com/matzehuels/mysterygraph/pkg/graph"
	"github.com/matzehuels/mysterygraph/pkg/render/nodelink"
)

// GenerateLayout builds the DOT source for g and packages it with the graph.
// Positions are computed by Graphviz at render time.
func GenerateLayout(g graph.Graph, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	nlOpts := opts.NodelinkOptions()
	dot := nodelink.ToDOT(g, nlOpts)
	return nodelink.Export(dot, g, nlOpts, opts.Width, opts.Height), nil
}
