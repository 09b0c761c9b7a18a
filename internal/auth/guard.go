package auth

import (
	"net/http"

	"github.com/cherrycherry3/crt-backend/internal/rbac"
	"github.com/labstack/echo/v4"
)

// Guard is the authorization gate applied per route.
type Guard struct {
	superRole string
}

func NewGuard(checker *rbac.Checker) *Guard {
	return &Guard{superRole: checker.SuperRole().String()}
}

// RequirePermission allows the super role unconditionally and otherwise requires the
// literal "action:resource" string in the caller's permission set.
func (g *Guard) RequirePermission(action rbac.Action, resource rbac.Resource) echo.MiddlewareFunc {
	required := string(rbac.NewPermission(action, resource))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := c.Get(ContextKeyIdentity).(*Identity)
			if !ok || identity == nil {
				return respondError(c, http.StatusUnauthorized, msgAuthenticationRequired)
			}

			if g.superRole != "" && identity.Role == g.superRole {
				return next(c)
			}

			if !identity.HasPermission(required) {
				return respondError(c, http.StatusForbidden, msgPermissionDenied)
			}

			return next(c)
		}
	}
}
