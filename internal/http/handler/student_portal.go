package handler

import (
	"net/http"
	"time"

	"github.com/cherrycherry3/crt-backend/internal/audit"
	"github.com/cherrycherry3/crt-backend/internal/domain/enrollment"
	"github.com/labstack/echo/v4"
)

// StudentPortalHandler serves the signed-in student's own enrollments.
type StudentPortalHandler struct {
	students    StudentResolver
	enrollments EnrollmentRepository
	audit       Auditor
	cache       CacheInvalidator
	now         func() time.Time
}

func NewStudentPortalHandler(students StudentResolver, enrollments EnrollmentRepository, auditor Auditor, cache CacheInvalidator) *StudentPortalHandler {
	return &StudentPortalHandler{
		students:    students,
		enrollments: enrollments,
		audit:       auditor,
		cache:       cache,
		now:         time.Now,
	}
}

type UpdateProgressRequest struct {
	ProgressPercentage *float64 `json:"progress_percentage" validate:"required,gte=0,lte=100"`
}

func (h *StudentPortalHandler) studentID(c echo.Context) (int, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return 0, err
	}
	s, err := h.students.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		return 0, err
	}
	return s.ID, nil
}

func (h *StudentPortalHandler) Courses(c echo.Context) error {
	studentID, err := h.studentID(c)
	if err != nil {
		return err
	}

	rows, err := h.enrollments.ListForStudent(c.Request().Context(), studentID)
	if err != nil {
		return err
	}

	out := make([]StudentCourseResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, StudentCourseResponse{
			CourseID:           r.CourseID,
			CourseTitle:        r.CourseTitle,
			Category:           r.Category,
			Level:              r.Level,
			EnrollmentStatus:   r.Status,
			ProgressPercentage: r.ProgressPercentage,
			CourseScore:        r.CourseScore,
			LastAccessedAt:     r.LastAccessedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StudentPortalHandler) UpdateProgress(c echo.Context) error {
	courseID, err := pathID(c, paramCourseID)
	if err != nil {
		return err
	}

	var req UpdateProgressRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	studentID, err := h.studentID(c)
	if err != nil {
		return err
	}

	updated, err := h.enrollments.UpdateProgress(c.Request().Context(), enrollment.ProgressUpdate{
		StudentID:          studentID,
		CourseID:           courseID,
		ProgressPercentage: *req.ProgressPercentage,
		At:                 h.now().UTC(),
	})
	if err != nil {
		return err
	}

	h.audit.Record(c, audit.Entry{
		Action:      audit.ActionUpdateProgress,
		Description: "Updated course progress",
		EntityType:  audit.EntityEnrollment,
		EntityID:    audit.IntPtr(updated.ID),
		NewValues: map[string]any{
			"course_id":           courseID,
			"progress_percentage": updated.ProgressPercentage,
			"enrollment_status":   updated.Status,
		},
	})
	invalidate(c, h.cache)

	return c.JSON(http.StatusOK, ProgressResponse{
		CourseID:           courseID,
		EnrollmentStatus:   updated.Status,
		ProgressPercentage: updated.ProgressPercentage,
		CompletionDate:     updated.CompletionDate,
		LastAccessedAt:     updated.LastAccessedAt,
	})
}
