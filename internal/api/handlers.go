package api

import (
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/matzehuels/mysterygraph/pkg/buildinfo"
	mgerrors "github.com/matzehuels/mysterygraph/pkg/errors"
	"github.com/matzehuels/mysterygraph/pkg/graph"
	"github.com/matzehuels/mysterygraph/pkg/mystery"
	"github.com/matzehuels/mysterygraph/pkg/pipeline"
	"github.com/matzehuels/mysterygraph/pkg/validate"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string         `json:"status"`
	Service   string         `json:"service"`
	Build     buildinfo.Info `json:"build"`
	Hostname  string         `json:"hostname"`
	Timestamp string         `json:"ts"`
}

// GraphResponse is the body of POST /graph and GET /mysteries/{id}/graph.
// Findings and Graph are never both set.
type GraphResponse struct {
	Valid    bool               `json:"valid"`
	Findings []validate.Finding `json:"findings,omitempty"`
	Graph    *graph.Graph       `json:"graph,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "mysterygraph",
		Build:     buildinfo.Get(),
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(mystery.Schema())
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	data, format, err := s.readDocument(w, r, "format")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Check(r.Context(), data, pipeline.Options{Format: format})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newFindingsResponse(res.Findings))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	data, format, err := s.readDocument(w, r, "format")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeGraph(w, r, data, format)
}

// writeGraph checks a document and answers with its findings or its graph.
func (s *Server) writeGraph(w http.ResponseWriter, r *http.Request, data []byte, format mystery.Format) {
	res, err := s.runner.Check(r.Context(), data, pipeline.Options{Format: format})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !res.Valid() {
		writeJSON(w, http.StatusOK, GraphResponse{Valid: false, Findings: res.Findings})
		return
	}
	g, err := s.runner.Derive(r.Context(), res)
	if err != nil {
		s.writeError(w, r, mgerrors.Wrap(mgerrors.ErrCodeInconsistent, err, "%s", err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, GraphResponse{Valid: true, Graph: &g})
}

// handleRender renders one artifact. ?format= selects the output, the
// document format comes from ?input= or the Content-Type.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := renderOptions(q.Get("format"), q.Get("engine"), q.Get("detailed"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, format, err := s.readDocument(w, r, "input")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Format = format
	opts.Refresh = q.Get("refresh") == "true"

	res, err := s.runner.Execute(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !res.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, newFindingsResponse(res.Findings))
		return
	}
	if res.DeriveError != nil {
		s.writeError(w, r, mgerrors.Wrap(mgerrors.ErrCodeInconsistent, res.DeriveError, "%s", res.DeriveError.Error()))
		return
	}

	out := opts.Formats[0]
	w.Header().Set("Content-Type", artifactContentType(out))
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[out])
}

func renderOptions(format, engine, detailed string) (pipeline.Options, error) {
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return pipeline.Options{}, mgerrors.Wrap(mgerrors.ErrCodeInvalidFormat, err, "%s", err.Error())
	}
	if engine == "" {
		engine = pipeline.DefaultEngine
	}
	if err := pipeline.ValidateEngine(engine); err != nil {
		return pipeline.Options{}, mgerrors.Wrap(mgerrors.ErrCodeInvalidEngine, err, "%s", err.Error())
	}
	opts := pipeline.Options{Engine: engine, Formats: []string{format}}
	if detailed != "" {
		d, err := strconv.ParseBool(detailed)
		if err != nil {
			return pipeline.Options{}, mgerrors.New(mgerrors.ErrCodeInvalidInput, "detailed must be a boolean, got %q", detailed)
		}
		opts.Detailed = d
	}
	return opts, nil
}

func artifactContentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatPDF:
		return "application/pdf"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/json"
	}
}

// readDocument reads the request body and picks the document format from
// the named query parameter, then the Content-Type, then YAML.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request, param string) ([]byte, mystery.Format, error) {
	format, err := requestFormat(r, param)
	if err != nil {
		return nil, "", err
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", mgerrors.New(mgerrors.ErrCodeInvalidInput, "request body is empty")
	}
	return data, format, nil
}

func requestFormat(r *http.Request, param string) (mystery.Format, error) {
	if v := r.URL.Query().Get(param); v != "" {
		f, err := mystery.ParseFormat(v)
		if err != nil {
			return "", mgerrors.Wrap(mgerrors.ErrCodeInvalidFormat, err, "%s", err.Error())
		}
		return f, nil
	}
	if f, ok := mystery.FormatFromContentType(r.Header.Get("Content-Type")); ok {
		return f, nil
	}
	return mystery.FormatYAML, nil
}
