package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mysterygraph/pkg/graph"
)

// graphCommand creates the graph command for exporting the derived graph.
func (c *CLI) graphCommand() *cobra.Command {
	var inputFormat, output string

	cmd := &cobra.Command{
		Use:   "graph [file|url]",
		Short: "Write the derived puzzle graph as JSON",
		Long: `Write the derived puzzle graph as JSON.

Every interactable becomes a node, keys become edges from the interactable
that hands them out to the ones that require them, and the goal becomes an
"end" node. Documents with findings produce no graph.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), args[0], inputFormat, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "document format: yaml, json, toml (default: from extension)")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, src, inputFormat, output string) error {
	prog := newProgress(loggerFromContext(ctx))

	data, format, err := readDocument(ctx, src, inputFormat)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := checkDocument(ctx, runner, data, format)
	if err != nil {
		return err
	}
	if !res.Valid() {
		printFindings(res.Findings)
		return errFindings(len(res.Findings))
	}

	g, err := runner.Derive(ctx, res)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Derived %d nodes and %d edges", g.NodeCount(), g.EdgeCount()))

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := graph.WriteGraph(g, out); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}

	if output != "" {
		printSuccess("Graph written")
		printFile(output)
		printStats(g.NodeCount(), g.EdgeCount(), false)
		printNewline()
		printNextStep("Render", appName+" render "+src)
	}
	return nil
}
