package handler

import (
	"github.com/cherrycherry3/crt-backend/internal/auth"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// currentUserID returns the authenticated caller, or the 401 produced by the gate
// contract when no identity is attached.
func currentUserID(c echo.Context) (int, error) {
	identity, err := auth.GetIdentity(c)
	if err != nil {
		return 0, err
	}
	return identity.ID, nil
}

// collegeScope resolves the college administered by the caller.
func collegeScope(c echo.Context, resolver CollegeResolver) (int, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return 0, err
	}
	return resolver.CollegeIDForAdmin(c.Request().Context(), userID)
}

// invalidate drops cached dashboards. Failures only cost freshness until the TTL.
func invalidate(c echo.Context, cache CacheInvalidator) {
	if cache == nil {
		return
	}
	if err := cache.Bump(c.Request().Context()); err != nil {
		zerolog.Ctx(c.Request().Context()).Warn().Err(err).Msg("dashboard cache invalidation failed")
	}
}
