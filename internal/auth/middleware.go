package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenValidator is the subset of TokenCodec the gate depends on.
type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// Middleware is the authentication gate. It trusts the token alone and never
// consults the database.
type Middleware struct {
	tokens         TokenValidator
	publicPrefixes []string
}

func NewMiddleware(tokens TokenValidator) *Middleware {
	return &Middleware{
		tokens:         tokens,
		publicPrefixes: PublicPathPrefixes,
	}
}

// Authenticate attaches an Identity to every non-public request or rejects it with 401.
func (m *Middleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if req.Method == http.MethodOptions || m.isPublic(req.URL.Path) {
				return next(c)
			}

			header := req.Header.Get(headerAuthorization)
			if header == "" {
				return respondError(c, http.StatusUnauthorized, msgAuthorizationMissing)
			}

			if !strings.HasPrefix(header, bearerPrefix) {
				return respondError(c, http.StatusUnauthorized, msgInvalidAuthorization)
			}

			token := strings.TrimSpace(header[len(bearerPrefix):])
			if token == "" {
				return respondError(c, http.StatusUnauthorized, msgTokenNotProvided)
			}

			claims, err := m.tokens.Validate(token)
			if err != nil {
				return respondError(c, http.StatusUnauthorized, msgInvalidOrExpiredToken)
			}

			identity, msg := identityFromClaims(claims)
			if identity == nil {
				return respondError(c, http.StatusUnauthorized, msg)
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

func (m *Middleware) isPublic(path string) bool {
	for _, prefix := range m.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func identityFromClaims(claims *Claims) (*Identity, string) {
	if claims == nil {
		return nil, msgInvalidTokenPayload
	}

	if claims.Subject == "" {
		return nil, msgIdentityMissing
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, msgInvalidTokenPayload
	}

	role := claims.Role
	if role == "" {
		role = DefaultRole
	}

	return &Identity{
		ID:          id,
		Role:        role,
		Permissions: NewPermissionSet(claims.Permissions),
	}, ""
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyDetail: message})
}
