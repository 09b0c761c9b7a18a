package auth

import (
	"sort"

	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/labstack/echo/v4"
)

// PermissionSet holds "action:resource" strings. Membership is exact and case-sensitive.
type PermissionSet map[string]struct{}

func NewPermissionSet(permissions []string) PermissionSet {
	set := make(PermissionSet, len(permissions))
	for _, p := range permissions {
		set[p] = struct{}{}
	}
	return set
}

func (s PermissionSet) Has(permission string) bool {
	_, ok := s[permission]
	return ok
}

// List returns the members in sorted order.
func (s PermissionSet) List() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Identity is the caller derived from a validated token. It is built once per
// request and must not be modified afterwards.
type Identity struct {
	ID          int
	Role        string
	Permissions PermissionSet
}

func (i *Identity) HasPermission(permission string) bool {
	return i.Permissions.Has(permission)
}

func SetIdentity(c echo.Context, identity *Identity) {
	c.Set(ContextKeyIdentity, identity)
}

// GetIdentity returns the identity attached by the authentication gate.
func GetIdentity(c echo.Context) (*Identity, error) {
	raw := c.Get(ContextKeyIdentity)
	if raw == nil {
		return nil, apperrors.Unauthorized(msgAuthenticationRequired)
	}

	identity, ok := raw.(*Identity)
	if !ok || identity == nil {
		return nil, apperrors.InternalServer(msgInvalidIdentityCtx, nil)
	}

	return identity, nil
}
