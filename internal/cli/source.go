package cli

import (
	"context"

	mgerrors "github.com/matzehuels/mysterygraph/pkg/errors"
	"github.com/matzehuels/mysterygraph/pkg/httputil"
	"github.com/matzehuels/mysterygraph/pkg/mystery"
	"github.com/matzehuels/mysterygraph/pkg/pipeline"
)

// readDocument loads src from disk or an http(s) URL. A non-empty
// inputFormat overrides the format inferred from the extension or
// Content-Type.
func readDocument(ctx context.Context, src, inputFormat string) ([]byte, mystery.Format, error) {
	data, format, err := pipeline.ReadSource(ctx, httputil.NewClient(nil), src)
	if err != nil {
		return nil, "", err
	}
	if inputFormat != "" {
		f, err := mystery.ParseFormat(inputFormat)
		if err != nil {
			return nil, "", mgerrors.Wrap(mgerrors.ErrCodeInvalidFormat, err, "%s", err.Error())
		}
		format = f
	}
	return data, format, nil
}

// checkDocument parses and validates data. Parse and shape failures come
// back as findings so every command reports them the same way.
func checkDocument(ctx context.Context, runner *pipeline.Runner, data []byte, format mystery.Format) (*pipeline.Result, error) {
	res, err := runner.Check(ctx, data, pipeline.Options{Format: format})
	if findings, ok := pipeline.ErrorFindings(err); ok {
		return &pipeline.Result{Findings: findings, Stats: pipeline.Stats{FindingCount: len(findings)}}, nil
	}
	return res, err
}

// errFindings is returned by commands that stop on an invalid document so
// the process exits non-zero.
func errFindings(n int) error {
	noun := "findings"
	if n == 1 {
		noun = "finding"
	}
	return mgerrors.New(mgerrors.ErrCodeFindings, "document has %d %s", n, noun)
}
