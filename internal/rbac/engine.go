package rbac

import "fmt"

// Checker answers role questions from a validated Config. It is immutable after New
// and safe for concurrent use.
type Checker struct {
	config Config
	grants map[Role][]Permission
}

// New creates a Checker from a validated Config
func New(cfg Config) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rc := &Checker{config: cfg}
	rc.buildLookups()
	return rc, nil
}

// MustNew creates a Checker and panics on invalid config
func MustNew(cfg Config) *Checker {
	rc, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf(errMustNewPanicFmt, err))
	}
	return rc
}

func (rc *Checker) buildLookups() {
	rc.grants = make(map[Role][]Permission, len(rc.config.Roles))
	for _, rd := range rc.config.Roles {
		grants := make([]Permission, len(rd.Grants))
		copy(grants, rd.Grants)
		rc.grants[rd.Name] = grants
	}
}

// ValidateRole validates a role string against configured roles
func (rc *Checker) ValidateRole(role string) (Role, error) {
	r := Role(role)
	if _, ok := rc.grants[r]; ok {
		return r, nil
	}
	return "", fmt.Errorf(errInvalidRoleFmt, ErrInvalidRole, role)
}

// PermissionsFor returns the fixed grant list for role as plain strings, ready to be
// embedded in a token. Unknown roles get an empty, non-nil list.
func (rc *Checker) PermissionsFor(role Role) []string {
	grants := rc.grants[role]
	out := make([]string, 0, len(grants))
	for _, p := range grants {
		out = append(out, string(p))
	}
	return out
}

// IsSuperRole reports whether role bypasses permission checks.
func (rc *Checker) IsSuperRole(role Role) bool {
	return rc.config.SuperRole != "" && role == rc.config.SuperRole
}

func (rc *Checker) SuperRole() Role {
	return rc.config.SuperRole
}

func (rc *Checker) DefaultRole() Role {
	return rc.config.DefaultRole
}

// Roles lists the roles that can log in, in declaration order.
func (rc *Checker) Roles() []Role {
	roles := make([]Role, 0, len(rc.config.Roles))
	for _, rd := range rc.config.Roles {
		roles = append(roles, rd.Name)
	}
	return roles
}
