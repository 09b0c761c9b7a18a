package handler

import (
	"net/http"
	"strings"

	"github.com/cherrycherry3/crt-backend/internal/audit"
	"github.com/cherrycherry3/crt-backend/internal/domain/course"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/labstack/echo/v4"
)

type CourseHandler struct {
	repo  CourseRepository
	audit Auditor
	cache CacheInvalidator
}

func NewCourseHandler(repo CourseRepository, auditor Auditor, cache CacheInvalidator) *CourseHandler {
	return &CourseHandler{repo: repo, audit: auditor, cache: cache}
}

type CreateCourseRequest struct {
	Title                  string  `json:"title" validate:"required,max=200"`
	CourseCode             string  `json:"course_code" validate:"required,max=50"`
	Description            *string `json:"description"`
	Category               *string `json:"category" validate:"omitempty,max=100"`
	Level                  string  `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	DurationHours          *int    `json:"duration_hours" validate:"omitempty,gte=0"`
	ExpectedCompletionDays *int    `json:"expected_completion_days" validate:"omitempty,gte=0"`
	ThumbnailURL           *string `json:"thumbnail_url"`
	TeacherID              *int    `json:"teacher_id" validate:"omitempty,gt=0"`
}

type UpdateCourseRequest struct {
	Title                  *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description            *string `json:"description"`
	Category               *string `json:"category" validate:"omitempty,max=100"`
	Level                  *string `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	DurationHours          *int    `json:"duration_hours" validate:"omitempty,gte=0"`
	ExpectedCompletionDays *int    `json:"expected_completion_days" validate:"omitempty,gte=0"`
	ThumbnailURL           *string `json:"thumbnail_url"`
	TeacherID              *int    `json:"teacher_id" validate:"omitempty,gt=0"`
	IsActive               *bool   `json:"is_active"`
	IsPublished            *bool   `json:"is_published"`
}

func (h *CourseHandler) Create(c echo.Context) error {
	var req CreateCourseRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	level := course.LevelBeginner
	if req.Level != "" {
		level = course.Level(req.Level)
	}

	created, err := h.repo.Create(c.Request().Context(), course.CreateCourseInput{
		Title:                  strings.TrimSpace(req.Title),
		Description:            req.Description,
		CourseCode:             strings.TrimSpace(req.CourseCode),
		Category:               req.Category,
		Level:                  level,
		DurationHours:          req.DurationHours,
		ExpectedCompletionDays: req.ExpectedCompletionDays,
		ThumbnailURL:           req.ThumbnailURL,
		TeacherID:              req.TeacherID,
	})
	if err != nil {
		return err
	}

	h.audit.Record(c, audit.Entry{
		Action:      audit.ActionCreateCourse,
		Description: "Created course " + created.Title,
		EntityType:  audit.EntityCourse,
		EntityID:    audit.IntPtr(created.ID),
		NewValues:   map[string]any{"title": created.Title, "course_code": created.CourseCode, "level": created.Level},
	})
	invalidate(c, h.cache)

	return c.JSON(http.StatusCreated, toCourseResponse(created))
}

func (h *CourseHandler) List(c echo.Context) error {
	courses, err := h.repo.ListActive(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]CourseResponse, 0, len(courses))
	for _, co := range courses {
		out = append(out, toCourseResponse(co))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CourseHandler) Get(c echo.Context) error {
	id, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	co, err := h.repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCourseResponse(co))
}

func (h *CourseHandler) Update(c echo.Context) error {
	id, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	var req UpdateCourseRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	input := course.UpdateCourseInput{
		Title:                  req.Title,
		Description:            req.Description,
		Category:               req.Category,
		DurationHours:          req.DurationHours,
		ExpectedCompletionDays: req.ExpectedCompletionDays,
		ThumbnailURL:           req.ThumbnailURL,
		TeacherID:              req.TeacherID,
		IsActive:               req.IsActive,
		IsPublished:            req.IsPublished,
	}
	if req.Level != nil {
		level := course.Level(*req.Level)
		input.Level = &level
	}
	if input == (course.UpdateCourseInput{}) {
		return apperrors.Validation(msgNoFieldsToUpdate)
	}

	updated, err := h.repo.Update(c.Request().Context(), id, input)
	if err != nil {
		return err
	}

	h.audit.Record(c, audit.Entry{
		Action:      audit.ActionUpdateCourse,
		Description: "Updated course " + updated.Title,
		EntityType:  audit.EntityCourse,
		EntityID:    audit.IntPtr(updated.ID),
		NewValues:   map[string]any{"title": updated.Title, "is_published": updated.IsPublished},
	})
	invalidate(c, h.cache)

	return c.JSON(http.StatusOK, toCourseResponse(updated))
}

func (h *CourseHandler) Delete(c echo.Context) error {
	id, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	if err := h.repo.SoftDelete(c.Request().Context(), id); err != nil {
		return err
	}

	h.audit.Record(c, audit.Entry{
		Action:      audit.ActionDeleteCourse,
		Description: "Deactivated course",
		EntityType:  audit.EntityCourse,
		EntityID:    audit.IntPtr(id),
	})
	invalidate(c, h.cache)

	return respondMessage(c, http.StatusOK, msgCourseDeleted)
}
