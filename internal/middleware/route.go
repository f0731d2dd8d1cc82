package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routePattern is the chi route template of the request, so log lines for
// /doctors/1 and /doctors/2 group together.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
