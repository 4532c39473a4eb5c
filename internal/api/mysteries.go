package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	mgerrors "github.com/matzehuels/mysterygraph/pkg/errors"
	"github.com/matzehuels/mysterygraph/pkg/notify"
	"github.com/matzehuels/mysterygraph/pkg/pipeline"
	"github.com/matzehuels/mysterygraph/pkg/storage"
	"github.com/matzehuels/mysterygraph/pkg/validate"
)

// SaveResponse is the body of POST /mysteries and PUT /mysteries/{id}.
type SaveResponse struct {
	Mystery  storage.Record     `json:"mystery"`
	Valid    bool               `json:"valid"`
	Findings []validate.Finding `json:"findings"`
}

// ListResponse is the body of GET /mysteries.
type ListResponse struct {
	Mysteries []storage.Record `json:"mysteries"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "list mysteries"))
		return
	}
	out := make([]storage.Record, len(records))
	for i, rec := range records {
		out[i] = rec.Summary()
	}
	writeJSON(w, http.StatusOK, ListResponse{Mysteries: out})
}

// handleCreate stores a new document named by ?name=. Documents with
// findings are stored too; documents that do not parse are rejected.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	data, format, err := s.readDocument(w, r, "format")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec := storage.NewRecord(strings.TrimSpace(r.URL.Query().Get("name")), format, data)
	s.save(w, r, rec, http.StatusCreated)
}

// handleUpdate replaces the source of an existing document. The name is
// kept unless ?name= renames it.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	data, format, err := s.readDocument(w, r, "format")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	existing.Source = string(data)
	existing.Format = format
	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		existing.Name = name
	}
	s.save(w, r, existing, http.StatusOK)
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, rec *storage.Record, status int) {
	res, err := s.runner.Check(r.Context(), []byte(rec.Source), pipeline.Options{Format: rec.Format})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.logger.Info("saved mystery", "id", rec.ID, "name", rec.Name, "findings", len(res.Findings))

	nodes, edges := 0, 0
	if res.Valid() {
		if g, err := s.runner.Derive(r.Context(), res); err == nil {
			nodes, edges = g.NodeCount(), g.EdgeCount()
		}
	}
	s.publish(r.Context(), notify.NewReport(rec.ID, rec.Name, res.Findings, nodes, edges))

	resp := newFindingsResponse(res.Findings)
	writeJSON(w, status, SaveResponse{Mystery: rec.Summary(), Valid: resp.Valid, Findings: resp.Findings})
}

// publish sends a report. A failed publish never fails the save.
func (s *Server) publish(ctx context.Context, report notify.Report) {
	if err := s.publisher.Publish(ctx, report); err != nil {
		s.logger.Warn("could not publish report", "id", report.DocumentID, "err", err)
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", rec.Format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rec.Source))
}

func (s *Server) handleStoredGraph(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeGraph(w, r, []byte(rec.Source), rec.Format)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeStoreError keeps coded errors (bad names, not found) as they are and
// marks anything else as a storage failure.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if mgerrors.GetCode(err) == "" && !isNotFound(err) {
		err = mgerrors.Wrap(mgerrors.ErrCodeStorage, err, "storage failure")
	}
	s.writeError(w, r, err)
}
