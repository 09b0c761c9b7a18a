package rbac

import "errors"

var (
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidPermission = errors.New("invalid permission")
)

const (
	errConfigRolesEmpty             = "rbac config: roles must not be empty"
	errConfigRoleNameEmpty          = "rbac config: role name must not be empty"
	errConfigDuplicateRoleNameFmt   = "rbac config: duplicate role name: %s"
	errConfigSuperRoleUnknownFmt    = "rbac config: super role %s is not a declared role"
	errConfigDefaultRoleDeclaredFmt = "rbac config: default role %s must not be a login role"
	errConfigMalformedPermissionFmt = "rbac config: role %s grants malformed permission %q"
	errConfigDuplicatePermissionFmt = "rbac config: role %s grants %s twice"
	errMustNewPanicFmt              = "rbac.MustNew: %v"
	errInvalidRoleFmt               = "%w: %s"
)
