package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/mysterygraph/pkg/errors"
)

func testClient(srv *httptest.Server, headers map[string]string) *Client {
	c := NewClient(headers)
	c.http = srv.Client()
	c.backoff.Delay = time.Millisecond
	return c
}

func TestClientFetch(t *testing.T) {
	var gotHeader, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/yaml")
		w.Write([]byte("FinalGoalId: escape\n"))
	}))
	defer srv.Close()

	c := testClient(srv, map[string]string{"Authorization": "Bearer token"})
	body, ct, err := c.Fetch(context.Background(), srv.URL+"/mystery.yml")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "FinalGoalId: escape\n" {
		t.Errorf("body = %q", body)
	}
	if ct != "application/yaml" {
		t.Errorf("content type = %q", ct)
	}
	if gotHeader != "Bearer token" {
		t.Errorf("Authorization header = %q", gotHeader)
	}
	if !strings.HasPrefix(gotAgent, "mysterygraph/") {
		t.Errorf("User-Agent = %q", gotAgent)
	}
}

func TestClientFetchStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCode  errors.Code
		wantCalls int32
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeDocumentNotFound, 1},
		{"forbidden", http.StatusForbidden, errors.ErrCodeNetwork, 1},
		{"server error retried", http.StatusBadGateway, errors.ErrCodeNetwork, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, _, err := testClient(srv, nil).Fetch(context.Background(), srv.URL)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("err = %v, want code %s", err, tt.wantCode)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestClientFetchRecovers(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, _, err := testClient(srv, nil).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "ok" || calls.Load() != 2 {
		t.Errorf("body = %q after %d calls", body, calls.Load())
	}
}

func TestClientFetchTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, MaxDocumentSize+10))
	}))
	defer srv.Close()

	_, _, err := testClient(srv, nil).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestClientFetchRejectsScheme(t *testing.T) {
	_, _, err := NewClient(nil).Fetch(context.Background(), "file:///etc/passwd")
	if err == nil {
		t.Error("expected error for file URL")
	}
}
