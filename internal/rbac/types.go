package rbac

import "strings"

// Role is a platform account role as stored in roles.name and carried in tokens.
type Role string

// Permission is an "action:resource" capability string.
type Permission string

// Resource represents a type of resource in the system
type Resource string

// Action represents an operation on a resource
type Action string

const permissionSeparator = ":"

// RoleDefinition declares a role and the permissions issued to it at login.
type RoleDefinition struct {
	Name   Role
	Grants []Permission
}

// NewPermission joins action and resource without normalising case.
func NewPermission(action Action, resource Resource) Permission {
	return Permission(string(action) + permissionSeparator + string(resource))
}

// Split returns the action and resource halves. ok is false unless both are non-empty.
func (p Permission) Split() (Action, Resource, bool) {
	action, resource, found := strings.Cut(string(p), permissionSeparator)
	if !found || action == "" || resource == "" || strings.Contains(resource, permissionSeparator) {
		return "", "", false
	}
	return Action(action), Resource(resource), true
}

func (r Role) String() string {
	return string(r)
}
