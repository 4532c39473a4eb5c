// Package pkg provides the core libraries for mysterygraph.
//
// # Overview
//
// mysterygraph reads escape-room mystery documents, reports structural
// defects and draws valid mysteries as a graph of interactables connected by
// reveals and keys. The pkg directory is organized into these areas:
//
//  1. [mystery] - Document model, YAML/JSON/TOML parsing and the shape check
//  2. [validate] - Semantic checks producing titled findings
//  3. [graph] - Graph derivation and serialization types
//  4. [render] - DOT generation and Graphviz rendering
//  5. [pipeline] - Orchestration (parse → check → derive → layout → render)
//  6. Infrastructure - [cache], [storage], [notify], [httputil], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	YAML / JSON / TOML document (file, URL or HTTP body)
//	         ↓
//	    [mystery] package (parse + shape check)
//	         ↓
//	    [validate] package (findings)
//	         ↓
//	    [graph] package (nodes + key/reveal edges)
//	         ↓
//	    [render/nodelink] package (DOT + fdp layout)
//	         ↓
//	    SVG/PDF/PNG/DOT/JSON output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/mysterygraph/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if findings, ok := pipeline.ErrorFindings(err); ok {
//	    // document parsed but has semantic defects
//	}
//
// # Main Packages
//
// [mystery] - Document types with optional complexity and description,
// format detection from file extension or Content-Type, and a JSON schema.
//
// [validate] - Duplicate ids, missing start, missing goal, dangling
// references and unreferenced items. Checks stop at the first failing stage.
//
// [graph] - Derived node-link graph with per-node kind (start, end,
// red-herring, locked-puzzle, lock, puzzle, button) and the layout record
// cached between pipeline stages.
//
// [render] - PDF and PNG conversion via rsvg-convert; the [render/nodelink]
// subpackage emits DOT and renders it with go-graphviz.
//
// [pipeline] - Runner with per-stage caching and observability hooks, used by
// both the CLI and the HTTP API.
//
// # Infrastructure
//
// [cache] - Content-addressed render cache (file, Redis, null).
//
// [storage] - Saved mysteries (memory, file, MongoDB, PostgreSQL).
//
// [notify] - Validation reports published over MQTT.
//
// [httputil] - Fetching documents by URL with retries.
//
// [errors] - Coded errors mapped to exit messages and HTTP statuses.
//
// [mystery]: github.com/matzehuels/mysterygraph/pkg/mystery
// [validate]: github.com/matzehuels/mysterygraph/pkg/validate
// [graph]: github.com/matzehuels/mysterygraph/pkg/graph
// [render]: github.com/matzehuels/mysterygraph/pkg/render
// [render/nodelink]: github.com/matzehuels/mysterygraph/pkg/render/nodelink
// [pipeline]: github.com/matzehuels/mysterygraph/pkg/pipeline
// [cache]: github.com/matzehuels/mysterygraph/pkg/cache
// [storage]: github.com/matzehuels/mysterygraph/pkg/storage
// [notify]: github.com/matzehuels/mysterygraph/pkg/notify
// [httputil]: github.com/matzehuels/mysterygraph/pkg/httputil
// [observability]: github.com/matzehuels/mysterygraph/pkg/observability
// [errors]: github.com/matzehuels/mysterygraph/pkg/errors
package pkg
