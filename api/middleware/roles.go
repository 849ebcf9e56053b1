package middleware

import (
	"net/http"

	"github.com/oclservices/ocl-backend/api/responses"
	pkgerrors "github.com/oclservices/ocl-backend/pkg/errors"
	"github.com/oclservices/ocl-backend/pkg/enums"
	"github.com/oclservices/ocl-backend/pkg/logger"
)

// RequireRole rejects requests whose token role differs from role. Portal roles must also carry an entity id.
func RequireRole(role enums.ActorRole, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			if role.RequiresEntity() && EntityIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "token is not scoped to an account"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
