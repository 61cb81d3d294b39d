package middleware

import (
	"net/http"
	"slices"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
)

// RequireRole lets the request through when the caller holds one of roles.
// Admins always pass.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if claims.Role != auth.RoleAdmin && !slices.Contains(roles, claims.Role) {
				response.HandleError(w, auth.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePayrollAdmin gates payroll and AI policy writes.
var RequirePayrollAdmin = RequireRole(auth.RolePayrollAdmin)

// RequireReviewer gates the AI review queue.
var RequireReviewer = RequireRole(auth.RoleReviewer, auth.RolePayrollAdmin)
