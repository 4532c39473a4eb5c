package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/mysterygraph/pkg/cache"
	mgerrors "github.com/matzehuels/mysterygraph/pkg/errors"
	"github.com/matzehuels/mysterygraph/pkg/graph"
	"github.com/matzehuels/mysterygraph/pkg/httputil"
	"github.com/matzehuels/mysterygraph/pkg/mystery"
	"github.com/matzehuels/mysterygraph/pkg/observability"
	"github.com/matzehuels/mysterygraph/pkg/validate"
)

// Check parses data and runs the semantic validator.
//
// Syntax and shape failures are returned as errors wrapping a
// [*mystery.ParseError] or [*mystery.SchemaError]; use [ErrorFindings] to
// present them as findings. Semantic defects are reported in
// Result.Findings with a nil error.
func Check(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := opts.ValidateForCheck(); err != nil {
		return nil, mgerrors.Wrap(mgerrors.ErrCodeInvalidFormat, err, "%s", err.Error())
	}
	hooks := observability.Pipeline()

	start := time.Now()
	hooks.OnParseStart(ctx, string(opts.Format))
	doc, err := mystery.Parse(data, opts.Format)
	hooks.OnParseComplete(ctx, string(opts.Format), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}

	hash, err := cache.HashJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("hash document: %w", err)
	}

	validateStart := time.Now()
	hooks.OnValidateStart(ctx)
	findings := validate.Document(doc)
	hooks.OnValidateComplete(ctx, len(findings), time.Since(validateStart))

	return &Result{
		Document:     doc,
		DocumentHash: hash,
		Findings:     findings,
		Artifacts:    make(map[string][]byte),
		Stats: Stats{
			CheckTime:    time.Since(start),
			FindingCount: len(findings),
		},
	}, nil
}

// Derive builds the visualization graph, firing the derive hook.
func Derive(ctx context.Context, doc *mystery.Document) (graph.Graph, error) {
	start := time.Now()
	g, err := graph.Derive(doc)
	observability.Pipeline().OnDeriveComplete(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start), err)
	return g, err
}

// ErrorFindings converts a parse or shape failure into findings so callers
// can report every problem the same way. Parse failures are titled by format
// ("YAML parsing exception") and shape violations by their path. The second
// result is false for any other error.
func ErrorFindings(err error) ([]validate.Finding, bool) {
	var pe *mystery.ParseError
	if errors.As(err, &pe) {
		return []validate.Finding{{Title: pe.Title(), Message: pe.Msg}}, true
	}
	var se *mystery.SchemaError
	if errors.As(err, &se) {
		findings := make([]validate.Finding, len(se.Violations))
		for i, v := range se.Violations {
			findings[i] = validate.Finding{Title: v.Path, Message: v.Message}
		}
		return findings, true
	}
	return nil, false
}

// ReadSource loads a document from a file path or an http(s) URL and
// reports the format it should be parsed with. For URLs the Content-Type
// wins over the extension.
func ReadSource(ctx context.Context, client *httputil.Client, src string) ([]byte, mystery.Format, error) {
	if mgerrors.IsURL(src) {
		if client == nil {
			client = httputil.NewClient(nil)
		}
		data, ct, err := client.Fetch(ctx, src)
		if err != nil {
			return nil, "", err
		}
		if f, ok := mystery.FormatFromContentType(ct); ok {
			return data, f, nil
		}
		return data, mystery.FormatFromPath(src), nil
	}

	data, err := os.ReadFile(src)
	if os.IsNotExist(err) {
		return nil, "", mgerrors.Wrap(mgerrors.ErrCodeFileNotFound, err, "file not found: %s", src)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", src, err)
	}
	return data, mystery.FormatFromPath(src), nil
}
