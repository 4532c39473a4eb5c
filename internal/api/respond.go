package api

import (
	"encoding/json"
	"errors"
	"net/http"

	mgerrors "github.com/matzehuels/mysterygraph/pkg/errors"
	"github.com/matzehuels/mysterygraph/pkg/pipeline"
	"github.com/matzehuels/mysterygraph/pkg/storage"
	"github.com/matzehuels/mysterygraph/pkg/validate"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// FindingsResponse reports the verdict on a document.
type FindingsResponse struct {
	Valid    bool               `json:"valid"`
	Findings []validate.Finding `json:"findings"`
}

func newFindingsResponse(findings []validate.Finding) FindingsResponse {
	if findings == nil {
		findings = []validate.Finding{}
	}
	return FindingsResponse{Valid: len(findings) == 0, Findings: findings}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{OK: false, Error: msg, Code: code})
}

// writeError answers with the status and code carried by err. Parse and
// shape failures become a 422 findings response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if findings, ok := pipeline.ErrorFindings(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, newFindingsResponse(findings))
		return
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeStatus(w, http.StatusRequestEntityTooLarge, string(mgerrors.ErrCodeInvalidInput), "request body too large")
		return
	case isNotFound(err):
		writeStatus(w, http.StatusNotFound, string(mgerrors.ErrCodeDocumentNotFound), err.Error())
		return
	}

	status := mgerrors.HTTPStatus(err)
	code := mgerrors.GetCode(err)
	if code == "" {
		code = mgerrors.ErrCodeInternal
	}
	msg := mgerrors.UserMessage(err)
	if status >= http.StatusInternalServerError {
		setHandlerError(r, err)
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeStatus(w, status, string(code), msg)
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
