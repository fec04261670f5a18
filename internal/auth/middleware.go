package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// SessionCookie is the cookie carrying the web-session token.
const SessionCookie = "access_token"

type contextKey struct{}

var identityKey contextKey

// IdentityFrom returns the authenticated identity stored by RequireUser.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// tokenFromRequest extracts the presented token from the Authorization
// header or, failing that, the session cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// RequireUser validates the presented token and injects the identity into
// the request context. Every rejection reason produces the same 401 on the
// wire; the distinct reason is only logged.
func RequireUser(tokens *TokenService, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := tokenFromRequest(r)
			if tok == "" {
				unauthorized(w)
				return
			}
			identity, err := tokens.Resolve(tok)
			if err != nil {
				logger.Debugw("token rejected", "reason", err, "path", r.URL.Path)
				unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates admin-scoped routes. A missing identity and a non-admin
// role produce the same 401.
func RequireAdmin(tokens *TokenService, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	requireUser := RequireUser(tokens, logger)
	return func(next http.Handler) http.Handler {
		return requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok || !identity.IsAdmin() {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"authentication failed"}`))
}
