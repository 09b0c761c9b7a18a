package handler

import (
	"net/http"
	"strings"

	"github.com/cherrycherry3/crt-backend/internal/audit"
	"github.com/cherrycherry3/crt-backend/internal/domain/college"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/labstack/echo/v4"
)

type CollegeHandler struct {
	repo  CollegeRepository
	audit Auditor
	cache CacheInvalidator
}

func NewCollegeHandler(repo CollegeRepository, auditor Auditor, cache CacheInvalidator) *CollegeHandler {
	return &CollegeHandler{repo: repo, audit: auditor, cache: cache}
}

type CreateCollegeRequest struct {
	Name            string  `json:"name" validate:"required,max=200"`
	Code            *string `json:"code" validate:"omitempty,max=50"`
	Description     *string `json:"description"`
	Email           *string `json:"email" validate:"omitempty,max=150"`
	Phone           *string `json:"phone" validate:"omitempty,max=20"`
	Website         *string `json:"website" validate:"omitempty,max=255"`
	City            *string `json:"city" validate:"omitempty,max=100"`
	State           *string `json:"state" validate:"omitempty,max=100"`
	Country         *string `json:"country" validate:"omitempty,max=100"`
	EstablishedYear *int    `json:"established_year" validate:"omitempty,gte=1800,lte=2100"`
}

type UpdateCollegeRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=200"`
	Code            *string `json:"code" validate:"omitempty,max=50"`
	Description     *string `json:"description"`
	Email           *string `json:"email" validate:"omitempty,max=150"`
	Phone           *string `json:"phone" validate:"omitempty,max=20"`
	Website         *string `json:"website" validate:"omitempty,max=255"`
	City            *string `json:"city" validate:"omitempty,max=100"`
	State           *string `json:"state" validate:"omitempty,max=100"`
	Country         *string `json:"country" validate:"omitempty,max=100"`
	EstablishedYear *int    `json:"established_year" validate:"omitempty,gte=1800,lte=2100"`
	IsActive        *bool   `json:"is_active"`
}

func (h *CollegeHandler) Create(c echo.Context) error {
	var req CreateCollegeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	created, err := h.repo.Create(c.Request().Context(), college.CreateCollegeInput{
		Name:            strings.TrimSpace(req.Name),
		Code:            req.Code,
		Description:     req.Description,
		Email:           req.Email,
		Phone:           req.Phone,
		Website:         req.Website,
		City:            req.City,
		State:           req.State,
		Country:         req.Country,
		EstablishedYear: req.EstablishedYear,
	})
	if err != nil {
		return err
	}

	h.audit.Record(c, audit.Entry{
		Action:      audit.ActionCreateCollege,
		Description: "Created college " + created.Name,
		EntityType:  audit.EntityCollege,
		EntityID:    audit.IntPtr(created.ID),
		NewValues:   map[string]any{"name": created.Name, "code": created.Code},
	})
	invalidate(c, h.cache)

	return c.JSON(http.StatusCreated, toCollegeResponse(created))
}

func (h *CollegeHandler) List(c echo.Context) error {
	colleges, err := h.repo.ListActive(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]CollegeResponse, 0, len(colleges))
	for _, col := range colleges {
		out = append(out, toCollegeResponse(col))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CollegeHandler) Get(c echo.Context) error {
	id, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	col, err := h.repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCollegeResponse(col))
}

func (h *CollegeHandler) Update(c echo.Context) error {
	id, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	var req UpdateCollegeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	input := college.UpdateCollegeInput{
		Name:            req.Name,
		Code:            req.Code,
		Description:     req.Description,
		Email:           req.Email,
		Phone:           req.Phone,
		Website:         req.Website,
		City:            req.City,
		State:           req.State,
		Country:         req.Country,
		EstablishedYear: req.EstablishedYear,
		IsActive:        req.IsActive,
	}
	if input.IsEmpty() {
		return apperrors.Validation(msgNoFieldsToUpdate)
	}

	updated, err := h.repo.Update(c.Request().Context(), id, input)
	if err != nil {
		return err
	}

	h.audit.Record(c, audit.Entry{
		Action:      audit.ActionUpdateCollege,
		Description: "Updated college " + updated.Name,
		EntityType:  audit.EntityCollege,
		EntityID:    audit.IntPtr(updated.ID),
		NewValues:   map[string]any{"name": updated.Name, "is_active": updated.IsActive},
	})
	invalidate(c, h.cache)

	return c.JSON(http.StatusOK, toCollegeResponse(updated))
}

func (h *CollegeHandler) Delete(c echo.Context) error {
	id, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	if err := h.repo.SoftDelete(c.Request().Context(), id); err != nil {
		return err
	}

	h.audit.Record(c, audit.Entry{
		Action:      audit.ActionDeleteCollege,
		Description: "Deactivated college",
		EntityType:  audit.EntityCollege,
		EntityID:    audit.IntPtr(id),
	})
	invalidate(c, h.cache)

	return respondMessage(c, http.StatusOK, msgCollegeDeleted)
}
