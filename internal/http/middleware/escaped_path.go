package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// EscapedPath makes chi match routes against the escaped request path, so
// every URL parameter arrives percent-encoded and is decoded exactly once by
// the parameter binder. Without it, a value such as "50%" (sent as 50%25)
// reaches handlers already decoded while "a/b" (sent as a%2Fb) does not.
func EscapedPath() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath == "" {
				rctx.RoutePath = r.URL.EscapedPath()
			}
			next.ServeHTTP(w, r)
		})
	}
}
