package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cherrycherry3/crt-backend/internal/domain/dashboard"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	cacheScopeAdmin   = "admin"
	cacheScopeCollege = "college"
	cacheScopeStudent = "student"
)

type DashboardHandler struct {
	dashboards DashboardRepository
	cache      DashboardCache
	colleges   CollegeResolver
	students   StudentResolver
}

func NewDashboardHandler(dashboards DashboardRepository, cache DashboardCache, colleges CollegeResolver, students StudentResolver) *DashboardHandler {
	return &DashboardHandler{
		dashboards: dashboards,
		cache:      cache,
		colleges:   colleges,
		students:   students,
	}
}

// fetch serves dest from the cache when possible and falls back to load.
func (h *DashboardHandler) fetch(ctx context.Context, dest any, load func(context.Context) (any, error), parts ...string) error {
	if h.cache == nil {
		return loadInto(ctx, dest, load)
	}

	key, err := h.cache.Key(ctx, parts...)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("dashboard cache unavailable")
		return loadInto(ctx, dest, load)
	}
	return h.cache.FetchJSON(ctx, key, dest, load)
}

// loadInto copies the loader result into dest through its JSON form, the same
// representation a cache hit would produce.
func loadInto(ctx context.Context, dest any, load func(context.Context) (any, error)) error {
	value, err := load(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (h *DashboardHandler) Admin(c echo.Context) error {
	var out dashboard.Admin
	err := h.fetch(c.Request().Context(), &out, func(ctx context.Context) (any, error) {
		return h.dashboards.Admin(ctx)
	}, cacheScopeAdmin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) College(c echo.Context) error {
	collegeID, err := collegeScope(c, h.colleges)
	if err != nil {
		return err
	}

	var out dashboard.College
	err = h.fetch(c.Request().Context(), &out, func(ctx context.Context) (any, error) {
		return h.dashboards.College(ctx, collegeID)
	}, cacheScopeCollege, strconv.Itoa(collegeID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DashboardHandler) Student(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	s, err := h.students.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	var out dashboard.Student
	err = h.fetch(c.Request().Context(), &out, func(ctx context.Context) (any, error) {
		return h.dashboards.Student(ctx, s.ID)
	}, cacheScopeStudent, strconv.Itoa(s.ID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// AdminTests is the placeholder of the admin test management module.
func (h *DashboardHandler) AdminTests(c echo.Context) error {
	return respondMessage(c, http.StatusOK, msgAdminTestsReady)
}
