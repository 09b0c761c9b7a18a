package rbac_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/cherrycherry3/crt-backend/internal/rbac"
	"github.com/cherrycherry3/crt-backend/internal/rbac/presets"
)

func newChecker(t *testing.T) *rbac.Checker {
	t.Helper()
	rc, err := rbac.New(presets.Platform())
	if err != nil {
		t.Fatalf("failed to create checker: %v", err)
	}
	return rc
}

func TestPermissionsFor(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		name     string
		role     rbac.Role
		expected []string
	}{
		{"Admin", presets.RoleAdmin, []string{"admin:*"}},
		{"College admin", presets.RoleCollegeAdmin, []string{
			"view:college_dashboard", "view:students", "view:courses", "create:students", "assign:courses",
		}},
		{"Teacher", presets.RoleTeacher, []string{"view:courses", "create:tests"}},
		{"Student", presets.RoleStudent, []string{
			"view:student_dashboard", "view:student_courses", "update:student_courses",
		}},
		{"Unknown role", rbac.Role("GUEST"), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checker.PermissionsFor(tt.role)
			if got == nil {
				t.Fatalf("PermissionsFor(%s) returned nil", tt.role)
			}
			if strings.Join(got, ",") != strings.Join(tt.expected, ",") {
				t.Errorf("PermissionsFor(%s) = %v, expected %v", tt.role, got, tt.expected)
			}
		})
	}
}

func TestPermissionsForReturnsCopy(t *testing.T) {
	checker := newChecker(t)

	first := checker.PermissionsFor(presets.RoleTeacher)
	first[0] = "delete:everything"

	second := checker.PermissionsFor(presets.RoleTeacher)
	if second[0] != "view:courses" {
		t.Errorf("grant list was mutated through a returned slice: %v", second)
	}
}

func TestValidateRole(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		name      string
		role      string
		expectErr bool
	}{
		{"Admin", "ADMIN", false},
		{"College admin", "COLLEGE_ADMIN", false},
		{"Teacher", "TEACHER", false},
		{"Student", "STUDENT", false},
		{"Lowercase is not a role", "admin", true},
		{"Default role cannot log in", "USER", true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checker.ValidateRole(tt.role)
			if (err != nil) != tt.expectErr {
				t.Errorf("ValidateRole(%q) error = %v, expectErr %v", tt.role, err, tt.expectErr)
			}
			if err != nil && !errors.Is(err, rbac.ErrInvalidRole) {
				t.Errorf("expected ErrInvalidRole, got %v", err)
			}
		})
	}
}

func TestIsSuperRole(t *testing.T) {
	checker := newChecker(t)

	if !checker.IsSuperRole(presets.RoleAdmin) {
		t.Error("ADMIN should be the super role")
	}
	if checker.IsSuperRole(presets.RoleCollegeAdmin) {
		t.Error("COLLEGE_ADMIN must not be the super role")
	}
	if checker.DefaultRole() != presets.RoleUser {
		t.Errorf("DefaultRole() = %s, expected USER", checker.DefaultRole())
	}
}

func TestPermissionSplit(t *testing.T) {
	tests := []struct {
		perm     rbac.Permission
		action   rbac.Action
		resource rbac.Resource
		ok       bool
	}{
		{"view:courses", "view", "courses", true},
		{"admin:*", "admin", "*", true},
		{"view", "", "", false},
		{":courses", "", "", false},
		{"view:", "", "", false},
		{"view:courses:extra", "", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.perm), func(t *testing.T) {
			action, resource, ok := tt.perm.Split()
			if ok != tt.ok || action != tt.action || resource != tt.resource {
				t.Errorf("Split(%q) = (%q, %q, %v)", tt.perm, action, resource, ok)
			}
		})
	}
}

func TestNewPermissionKeepsCase(t *testing.T) {
	if got := rbac.NewPermission("Edit", "Courses"); got != "Edit:Courses" {
		t.Errorf("NewPermission = %q", got)
	}
}
