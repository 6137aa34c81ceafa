package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/FoodStore/pkg/logger"
)

// RequestLogger stores a logger enriched with correlation, user and trace ids
// in the request context. Mount it after RequestLogging and Tracing; routes
// behind Auth get the user id because Auth re-enriches the context logger.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := UserIDFromContext(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
