package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bizcard/internal/auth"
	"bizcard/internal/models"
	"bizcard/internal/store"
)

type identityContextKey struct{}

// Identity is what the session middleware attaches to the request context
// once the cookie token and the user record both check out.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// sessionMiddleware validates the access_token cookie and resolves the
// subject against the store. Browser page routes get redirected to /login
// on failure; /api/ routes get a 401. An invalid cookie is cleared so the
// client stops resending it.
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			h.rejectUnauthenticated(w, r, false)
			return
		}

		claims, err := auth.ParseToken(cookie.Value, h.secret)
		if err != nil {
			h.rejectUnauthenticated(w, r, true)
			return
		}

		user, err := h.store.GetUserByID(r.Context(), claims.Subject)
		if err != nil {
			// A token for a deleted user is as good as a forged one.
			if errors.Is(err, store.ErrUserNotFound) {
				h.rejectUnauthenticated(w, r, true)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}

		identity := Identity{UserID: user.UserID, Email: user.Email, Role: user.Role}
		ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) rejectUnauthenticated(w http.ResponseWriter, r *http.Request, clearCookie bool) {
	if clearCookie {
		h.clearSessionCookies(w)
	}
	if strings.HasPrefix(r.URL.Path, "/api/") || wantsJSON(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// requireRole gates a route on the session role. Unlike authentication
// failures this is a plain 403: the caller is known, just not allowed.
func (h *Handler) requireRole(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFromContext(r.Context())
		if !ok {
			h.rejectUnauthenticated(w, r, false)
			return
		}
		if identity.Role != role {
			writeError(w, http.StatusForbidden, "forbidden", "insufficient role")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFromContext(ctx context.Context) (Identity, bool) {
	value := ctx.Value(identityContextKey{})
	if value == nil {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

// IsAdmin is a convenience for templates and handlers.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}
