package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/utafrali/FoodStore/pkg/httputil"
	"github.com/utafrali/FoodStore/pkg/logger"
)

type contextKeyType string

const userIDKey contextKeyType = "user_id"

// NotAuthorizedMessage is returned for every rejected token.
const NotAuthorizedMessage = "Not Authorized Login Again"

// Claims are the identity fields the auth middleware needs from a token.
type Claims struct {
	UserID string
}

// TokenValidator validates a raw token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth requires a valid token, read from "Authorization: Bearer <t>" or the
// legacy "token" header, and puts the user id into the context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := tokenFromRequest(r)
			if !ok {
				writeAuthError(w)
				return
			}
			claims, err := validate(raw)
			if err != nil || claims.UserID == "" {
				writeAuthError(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = logger.WithUserID(ctx, claims.UserID)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With("user_id", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tok) == "" {
			return "", false
		}
		return strings.TrimSpace(tok), true
	}
	if tok := r.Header.Get("token"); tok != "" {
		return tok, true
	}
	return "", false
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithUserID is used by tests that bypass Auth.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func writeAuthError(w http.ResponseWriter) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Message: NotAuthorizedMessage,
		Code:    "UNAUTHORIZED",
	})
}
