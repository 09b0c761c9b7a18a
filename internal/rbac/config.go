package rbac

import "fmt"

// Config holds all RBAC configuration
type Config struct {
	Roles []RoleDefinition
	// SuperRole passes every permission check regardless of its grants.
	SuperRole Role
	// DefaultRole is assumed for tokens that carry no role claim. It cannot log in.
	DefaultRole Role
}

// Validate checks internal consistency of the Config
func (c *Config) Validate() error {
	if len(c.Roles) == 0 {
		return fmt.Errorf(errConfigRolesEmpty)
	}

	roleNames := make(map[Role]bool, len(c.Roles))
	for _, rd := range c.Roles {
		if rd.Name == "" {
			return fmt.Errorf(errConfigRoleNameEmpty)
		}
		if roleNames[rd.Name] {
			return fmt.Errorf(errConfigDuplicateRoleNameFmt, rd.Name)
		}
		roleNames[rd.Name] = true

		seen := make(map[Permission]bool, len(rd.Grants))
		for _, p := range rd.Grants {
			if _, _, ok := p.Split(); !ok {
				return fmt.Errorf(errConfigMalformedPermissionFmt, rd.Name, p)
			}
			if seen[p] {
				return fmt.Errorf(errConfigDuplicatePermissionFmt, rd.Name, p)
			}
			seen[p] = true
		}
	}

	if c.SuperRole != "" && !roleNames[c.SuperRole] {
		return fmt.Errorf(errConfigSuperRoleUnknownFmt, c.SuperRole)
	}

	if c.DefaultRole != "" && roleNames[c.DefaultRole] {
		return fmt.Errorf(errConfigDefaultRoleDeclaredFmt, c.DefaultRole)
	}

	return nil
}
