package presets

import "github.com/cherrycherry3/crt-backend/internal/rbac"

const (
	RoleAdmin        rbac.Role = "ADMIN"
	RoleCollegeAdmin rbac.Role = "COLLEGE_ADMIN"
	RoleTeacher      rbac.Role = "TEACHER"
	RoleStudent      rbac.Role = "STUDENT"
	RoleUser         rbac.Role = "USER"

	ActionView   rbac.Action = "view"
	ActionCreate rbac.Action = "create"
	ActionEdit   rbac.Action = "edit"
	ActionDelete rbac.Action = "delete"
	ActionUpload rbac.Action = "upload"
	ActionAssign rbac.Action = "assign"
	ActionUpdate rbac.Action = "update"

	ResourceColleges         rbac.Resource = "colleges"
	ResourceCourses          rbac.Resource = "courses"
	ResourceCourseFiles      rbac.Resource = "course_files"
	ResourceTests            rbac.Resource = "tests"
	ResourceStudents         rbac.Resource = "students"
	ResourceAdminDashboard   rbac.Resource = "admin_dashboard"
	ResourceCollegeDashboard rbac.Resource = "college_dashboard"
	ResourceStudentDashboard rbac.Resource = "student_dashboard"
	ResourceStudentCourses   rbac.Resource = "student_courses"
	ResourceMetrics          rbac.Resource = "metrics"

	// PermissionAdminAll is informational: ADMIN passes every guard as the super role.
	PermissionAdminAll rbac.Permission = "admin:*"
)

// Platform returns the role table used at login to stamp permissions into tokens.
func Platform() rbac.Config {
	return rbac.Config{
		Roles: []rbac.RoleDefinition{
			{
				Name:   RoleAdmin,
				Grants: []rbac.Permission{PermissionAdminAll},
			},
			{
				Name: RoleCollegeAdmin,
				Grants: []rbac.Permission{
					rbac.NewPermission(ActionView, ResourceCollegeDashboard),
					rbac.NewPermission(ActionView, ResourceStudents),
					rbac.NewPermission(ActionView, ResourceCourses),
					rbac.NewPermission(ActionCreate, ResourceStudents),
					rbac.NewPermission(ActionAssign, ResourceCourses),
				},
			},
			{
				Name: RoleTeacher,
				Grants: []rbac.Permission{
					rbac.NewPermission(ActionView, ResourceCourses),
					rbac.NewPermission(ActionCreate, ResourceTests),
				},
			},
			{
				Name: RoleStudent,
				Grants: []rbac.Permission{
					rbac.NewPermission(ActionView, ResourceStudentDashboard),
					rbac.NewPermission(ActionView, ResourceStudentCourses),
					rbac.NewPermission(ActionUpdate, ResourceStudentCourses),
				},
			},
		},
		SuperRole:   RoleAdmin,
		DefaultRole: RoleUser,
	}
}
