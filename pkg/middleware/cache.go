package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl marks GET and HEAD responses cacheable for maxAge seconds.
// immutable is for content-addressed assets such as uploaded images.
func CacheControl(maxAge int, immutable bool) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", maxAge)
	if immutable {
		value += ", immutable"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
