package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mysterygraph/pkg/observability"
)

type errSlotKey struct{}

// errSlot carries a handler failure back to the observe middleware.
type errSlot struct{ err error }

func setHandlerError(r *http.Request, err error) {
	if slot, ok := r.Context().Value(errSlotKey{}).(*errSlot); ok {
		slot.err = err
	}
}

// observe reports every request to the registered HTTP hooks. The route is
// the chi pattern, so /mysteries/{id} is one series regardless of the id.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		slot := &errSlot{}
		r = r.WithContext(context.WithValue(r.Context(), errSlotKey{}, slot))

		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if slot.err != nil {
				hooks.OnError(r.Context(), r.Method, route, slot.err)
			}
			hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		}()

		next.ServeHTTP(ww, r)
	})
}
