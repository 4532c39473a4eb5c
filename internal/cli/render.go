package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mysterygraph/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr  string
		inputFormat string
		output      string
		noCache     bool
	)
	opts := pipeline.Options{}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()

	cmd := &cobra.Command{
		Use:   "render [file|url]",
		Short: "Draw the puzzle graph of a mystery document",
		Long: `Draw the puzzle graph of a mystery document.

The document is validated first; documents with findings are not drawn.
The graph is laid out by a Graphviz force-directed engine and written as
SVG, PNG, PDF, raw DOT, or a JSON layout holding the DOT and the graph.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if err := pipeline.ValidateEngine(opts.Engine); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], inputFormat, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "document format: yaml, json, toml (default: from extension)")

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.Engine, "engine", "e", opts.Engine, "layout engine: fdp (default), neato, sfdp, circo, dot")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label nodes with descriptions and complexity")
	cmd.Flags().Float64Var(&opts.Width, "width", opts.Width, "frame width")
	cmd.Flags().Float64Var(&opts.Height, "height", opts.Height, "frame height")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG scale factor")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, src, inputFormat string, opts pipeline.Options, output string, noCache bool) error {
	data, format, err := readDocument(ctx, src, inputFormat)
	if err != nil {
		return err
	}
	opts.Format = format
	opts.Logger = c.Logger

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", filepath.Base(src)))
	spinner.Start()

	res, err := runner.Execute(ctx, data, opts)
	if findings, ok := pipeline.ErrorFindings(err); ok {
		spinner.Stop()
		printFindings(findings)
		return errFindings(len(findings))
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !res.Valid() {
		printFindings(res.Findings)
		return errFindings(len(res.Findings))
	}
	if res.DeriveError != nil {
		return res.DeriveError
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		input:     src,
		output:    output,
		nodes:     res.Stats.NodeCount,
		edges:     res.Stats.EdgeCount,
		cacheHit:  res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit,
	})
}
