package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	mgerrors "github.com/matzehuels/mysterygraph/pkg/errors"
	"github.com/matzehuels/mysterygraph/pkg/mystery"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var inputFormat, to, output string

	cmd := &cobra.Command{
		Use:   "convert [file|url]",
		Short: "Re-encode a mystery document as YAML, JSON or TOML",
		Long: `Re-encode a mystery document as YAML, JSON or TOML.

The document must parse and match the document schema. Semantic findings
are not checked; run 'validate' for that.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := mystery.ParseFormat(to)
			if err != nil {
				return mgerrors.Wrap(mgerrors.ErrCodeInvalidFormat, err, "%s", err.Error())
			}
			return c.runConvert(cmd.Context(), args[0], inputFormat, target, output)
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "json", "target format: yaml, json, toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "document format: yaml, json, toml (default: from extension)")

	return cmd
}

func (c *CLI) runConvert(ctx context.Context, src, inputFormat string, to mystery.Format, output string) error {
	data, format, err := readDocument(ctx, src, inputFormat)
	if err != nil {
		return err
	}
	doc, err := mystery.Parse(data, format)
	if err != nil {
		return err
	}
	encoded, err := mystery.Encode(doc, to)
	if err != nil {
		return fmt.Errorf("encode %s: %w", to, err)
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(encoded); err != nil {
		return err
	}

	loggerFromContext(ctx).Debug("converted document", "from", format, "to", to, "bytes", len(encoded))
	if output != "" {
		printSuccess("Converted %s to %s", src, to)
		printFile(output)
	}
	return nil
}
