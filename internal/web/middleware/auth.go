package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/conduit-lang/podreg/internal/web/auth"
	"github.com/conduit-lang/podreg/internal/web/response"
)

const (
	// SubjectKey is the context key for the authenticated token subject
	SubjectKey ContextKey = "subject"
)

// Auth requires a valid bearer token on every request except skipPaths.
// Browsers cannot set headers on websocket requests, so a "token" query
// parameter is accepted as well.
func Auth(tokens *auth.TokenService, skipPaths ...string) Middleware {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, err := extractToken(r)
			if err != nil {
				response.RenderErrorWithCode(w, http.StatusUnauthorized, err, "unauthorized")
				return
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				response.RenderErrorWithCode(w, http.StatusUnauthorized, fmt.Errorf("invalid token"), "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, nil
		}
		return "", fmt.Errorf("authorization required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("invalid authorization format")
	}
	return parts[1], nil
}

// GetSubject retrieves the authenticated subject from the context
func GetSubject(ctx context.Context) string {
	if subject, ok := ctx.Value(SubjectKey).(string); ok {
		return subject
	}
	return ""
}
