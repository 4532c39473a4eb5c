// Package buildinfo reports which mysterygraph build is running.
//
// The values are stamped at link time:
//
//	go build -ldflags "-X github.com/matzehuels/mysterygraph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/mysterygraph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/mysterygraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/mysterygraph
package buildinfo

import "fmt"

// Overridden with -ldflags -X.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is a snapshot of the stamped values.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String formats i as "v0.3.0 (commit abc123, built 2025-01-01T00:00:00Z)".
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Date)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} version " + Get().String() + "\n"
}
