package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/auth"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
)

const AccessCookieName = "clinic_access"

type adminIDKey struct{}

// AdminAuth accepts either the static X-Admin-Key or an admin JWT sent as a
// bearer token or in the access cookie.
func AdminAuth(adminKey string, manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" && manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			if adminKey != "" {
				if got := r.Header.Get("X-Admin-Key"); got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(adminKey)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}

			if manager != nil {
				if token := accessToken(r); token != "" {
					if id, ok := adminFromToken(manager, token); ok {
						next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminIDKey{}, id)))
						return
					}
				}
			}

			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		})
	}
}

func adminFromToken(manager *auth.Manager, token string) (int64, bool) {
	claims, err := manager.Parse(token)
	if err != nil || claims.Role != models.UserRoleAdmin {
		return 0, false
	}
	id, err := claims.AdminID()
	return id, err == nil
}

// AdminIDFromContext returns the id of the JWT-authenticated admin. It
// reports false when the request was authorized with the static key.
func AdminIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(adminIDKey{}).(int64)
	return id, ok
}

func accessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := r.Cookie(AccessCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
