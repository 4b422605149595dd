// Package middleware is the identity guard: it resolves a bearer credential
// to a user identity and permission set and attaches them to each request.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"pulsechat/auth"
	"pulsechat/database"
	"pulsechat/models"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the resolved caller: the user record plus the capability set
// derived from their role.
type Identity struct {
	User        *models.User
	Permissions map[models.Capability]bool
}

// Guard authenticates requests and enforces capability checks.
type Guard struct {
	tokens *auth.Manager
	db     *database.DB
}

func NewGuard(tokens *auth.Manager, db *database.DB) *Guard {
	return &Guard{tokens: tokens, db: db}
}

// Authenticate checks for a valid token and adds the identity to the context.
// The token is read from the "token" cookie or an Authorization bearer header.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		claims, err := g.tokens.Parse(token)
		if err != nil {
			http.Error(w, `{"error": "Invalid token"}`, http.StatusUnauthorized)
			return
		}

		user, err := g.db.GetUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, `{"error": "User not found"}`, http.StatusUnauthorized)
			return
		}
		if user.IsDisabled {
			http.Error(w, `{"error": "Account disabled"}`, http.StatusForbidden)
			return
		}

		identity := &Identity{User: user, Permissions: models.PermissionsFor(user.Role)}
		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCapability rejects requests whose identity lacks the capability.
// Super admins pass every check.
func (g *Guard) RequireCapability(c models.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r)
			if identity == nil {
				http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			if identity.User.Role != models.RoleSuperAdmin && !identity.Permissions[c] {
				http.Error(w, `{"error": "Insufficient permissions"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetIdentity retrieves the resolved identity from the request context.
func GetIdentity(r *http.Request) *Identity {
	identity, ok := r.Context().Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(r *http.Request) *models.User {
	identity := GetIdentity(r)
	if identity == nil {
		return nil
	}
	return identity.User
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	// Browser websocket clients cannot set headers.
	return r.URL.Query().Get("token")
}
