package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mysterygraph/pkg/validate"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var (
		inputFormat string
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file|url]",
		Short: "Check a mystery document for structural defects",
		Long: `Check a mystery document for structural defects.

The document is parsed, checked against the document schema and then
validated: duplicate ids, a missing start or goal, dangling references and
interactables or keys nothing refers to are reported as findings.

The command exits non-zero when there is at least one finding.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], inputFormat, jsonOut)
		},
	}

	cmd.Flags().StringVar(&inputFormat, "input-format", "", "document format: yaml, json, toml (default: from extension)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print findings as JSON")

	return cmd
}

type validateOutput struct {
	Valid    bool               `json:"valid"`
	Findings []validate.Finding `json:"findings"`
}

func (c *CLI) runValidate(ctx context.Context, src, inputFormat string, jsonOut bool) error {
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
	prog.done(fmt.Sprintf("Checked %s", src))

	if jsonOut {
		findings := res.Findings
		if findings == nil {
			findings = []validate.Finding{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(validateOutput{Valid: res.Valid(), Findings: findings}); err != nil {
			return err
		}
	} else if res.Valid() {
		printSuccess("%s is valid", src)
		printDetail("%d interactables · %d keys", len(res.Document.Interactables), len(res.Document.Keys))
	} else {
		printFindings(res.Findings)
	}

	if !res.Valid() {
		return errFindings(len(res.Findings))
	}
	return nil
}
