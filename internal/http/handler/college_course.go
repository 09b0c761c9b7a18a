package handler

import (
	"net/http"

	"github.com/cherrycherry3/crt-backend/internal/audit"
	"github.com/cherrycherry3/crt-backend/internal/domain/enrollment"
	"github.com/labstack/echo/v4"
)

type CollegeCourseHandler struct {
	resolver CollegeResolver
	courses  CollegeCourseRepository
	assigner CourseAssigner
	audit    Auditor
	cache    CacheInvalidator
}

func NewCollegeCourseHandler(resolver CollegeResolver, courses CollegeCourseRepository, assigner CourseAssigner, auditor Auditor, cache CacheInvalidator) *CollegeCourseHandler {
	return &CollegeCourseHandler{
		resolver: resolver,
		courses:  courses,
		assigner: assigner,
		audit:    auditor,
		cache:    cache,
	}
}

type AssignCourseRequest struct {
	CourseID       int `json:"course_id" validate:"required,gt=0"`
	BranchID       int `json:"branch_id" validate:"required,gt=0"`
	AcademicYearID int `json:"academic_year_id" validate:"required,gt=0"`
}

// Assign enrolls every student of a branch and academic year into a course.
// Students already enrolled are skipped.
func (h *CollegeCourseHandler) Assign(c echo.Context) error {
	var req AssignCourseRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	collegeID, err := collegeScope(c, h.resolver)
	if err != nil {
		return err
	}

	assigned, err := h.assigner.AssignToCohort(c.Request().Context(), enrollment.AssignInput{
		CollegeID:      collegeID,
		CourseID:       req.CourseID,
		BranchID:       req.BranchID,
		AcademicYearID: req.AcademicYearID,
	})
	if err != nil {
		return err
	}

	h.audit.Record(c, audit.Entry{
		Action:      audit.ActionAssignCourse,
		Description: "Assigned course to cohort",
		EntityType:  audit.EntityEnrollment,
		EntityID:    audit.IntPtr(req.CourseID),
		NewValues: map[string]any{
			"college_id":        collegeID,
			"branch_id":         req.BranchID,
			"academic_year_id":  req.AcademicYearID,
			"students_assigned": assigned,
		},
	})
	if assigned > 0 {
		invalidate(c, h.cache)
	}

	return c.JSON(http.StatusCreated, AssignResponse{
		CourseID:         req.CourseID,
		BranchID:         req.BranchID,
		AcademicYearID:   req.AcademicYearID,
		StudentsAssigned: assigned,
	})
}

func (h *CollegeCourseHandler) List(c echo.Context) error {
	collegeID, err := collegeScope(c, h.resolver)
	if err != nil {
		return err
	}

	rows, err := h.courses.ListForCollege(c.Request().Context(), collegeID)
	if err != nil {
		return err
	}

	out := make([]CollegeCourseResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, CollegeCourseResponse{
			CourseID:          r.CourseID,
			CourseTitle:       r.Title,
			Category:          r.Category,
			Level:             r.Level,
			StudentsAssigned:  r.StudentsAssigned,
			StudentsCompleted: r.StudentsCompleted,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CollegeCourseHandler) Available(c echo.Context) error {
	collegeID, err := collegeScope(c, h.resolver)
	if err != nil {
		return err
	}

	rows, err := h.courses.ListAvailableForCollege(c.Request().Context(), collegeID)
	if err != nil {
		return err
	}

	out := make([]AvailableCourse, 0, len(rows))
	for _, co := range rows {
		out = append(out, AvailableCourse{
			CourseID:               co.ID,
			Title:                  co.Title,
			Category:               co.Category,
			Level:                  co.Level,
			Description:            co.Description,
			ThumbnailURL:           co.ThumbnailURL,
			DurationHours:          co.DurationHours,
			ExpectedCompletionDays: co.ExpectedCompletionDays,
			CreatedAt:              co.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, AvailableCoursesResponse{
		CollegeID:    collegeID,
		TotalCourses: len(out),
		Courses:      out,
	})
}
