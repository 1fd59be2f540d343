package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"tijara.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "

	sessionCookie = "token"
)

var protectedPaths = []string{
	"/logout",
	"/profile",
	"/invite",
}

// withAuth resolves the session token into a principal for protected routes.
// A session cookie wins over an Authorization header when both are present.
// Everything else passes through: registration, login and invite redemption
// are reachable without a session, and unknown paths fall to the 404 handler.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if !isProtectedPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := sessionToken(r)
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		principal, err := a.svc.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUnauthenticated):
				writeError(w, r, http.StatusUnauthorized, "invalid or expired session")
			case errors.Is(err, auth.ErrForbidden):
				writeError(w, r, http.StatusForbidden, errMessage(err))
			default:
				writeError(w, r, http.StatusInternalServerError, "authentication error")
			}
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	header := strings.TrimSpace(r.Header.Get(authHeader))
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return ""
	}
	return strings.TrimSpace(header[len(bearer):])
}

func isProtectedPath(path string) bool {
	for _, p := range protectedPaths {
		if path == p {
			return true
		}
	}
	return false
}
