// Package notify announces validation results to room controllers.
//
// After a document is saved, the API publishes a [Report] so devices on
// the escape room floor can refuse to load a mystery with findings.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/mysterygraph/pkg/validate"
)

// Report is the published verdict for one stored document.
type Report struct {
	DocumentID string             `json:"document_id"`
	Name       string             `json:"name,omitempty"`
	Valid      bool               `json:"valid"`
	Findings   []validate.Finding `json:"findings"`
	Nodes      int                `json:"nodes"`
	Edges      int                `json:"edges"`
	Time       time.Time          `json:"time"`
}

// NewReport builds a report from findings and graph size.
func NewReport(id, name string, findings []validate.Finding, nodes, edges int) Report {
	if findings == nil {
		findings = []validate.Finding{}
	}
	return Report{
		DocumentID: id,
		Name:       name,
		Valid:      len(findings) == 0,
		Findings:   findings,
		Nodes:      nodes,
		Edges:      edges,
		Time:       time.Now().UTC(),
	}
}

// Marshal encodes the report as JSON.
func (r Report) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Publisher delivers reports.
type Publisher interface {
	Publish(ctx context.Context, r Report) error
	Close() error
}

// NoopPublisher drops every report.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Report) error { return nil }
func (NoopPublisher) Close() error                          { return nil }

var _ Publisher = NoopPublisher{}
