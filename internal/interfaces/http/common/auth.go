package common

import (
	"context"
	"log"
	"net/http"

	"github.com/bolsatrabajo/api/internal/apperror"
	uploaddomain "github.com/bolsatrabajo/api/internal/upload/domain"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the caller derived from the bearer token.
type Identity = uploaddomain.Identity

const (
	RoleStudent     = uploaddomain.RoleStudent
	RoleCompany     = uploaddomain.RoleCompany
	RoleCoordinator = uploaddomain.RoleCoordinator
)

// ContextWithIdentity stores the authenticated caller into context.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the authenticated caller from context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}

// ResolveCompanyID decides which company a request acts for. Company callers
// are pinned to their own id; coordinators must name one.
func ResolveCompanyID(identity Identity, requested string) (string, bool) {
	switch identity.Role {
	case RoleCompany:
		if requested != "" && requested != identity.ID {
			return "", false
		}
		return identity.ID, true
	case RoleCoordinator:
		return requested, requested != ""
	}
	return "", false
}

// RequireRole rejects callers whose role is not listed. It must run after the
// authentication middleware.
func RequireRole(logger *log.Logger, roles ...uploaddomain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteError(logger, w, r, apperror.Unauthenticated(""))
				return
			}
			for _, role := range roles {
				if identity.Is(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(logger, w, r, apperror.Forbidden())
		})
	}
}
