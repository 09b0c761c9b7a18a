package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cherrycherry3/crt-backend/internal/domain/user"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	verifier LoginVerifier
	history  LoginRecorder
}

func NewAuthHandler(verifier LoginVerifier, history LoginRecorder) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
		history:  history,
	}
}

// LoginRequest accepts an email or a phone number in Email.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=ADMIN COLLEGE_ADMIN TEACHER STUDENT"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	identifier := strings.TrimSpace(req.Email)

	result, userID, err := h.verifier.Verify(ctx, identifier, req.Password, req.Role)
	if err != nil {
		if userID != 0 && !errors.Is(err, apperrors.ErrInternalServer) {
			reason, _ := apperrors.Message(err)
			h.record(ctx, user.LoginAttempt{
				UserID:    userID,
				Status:    user.LoginFailed,
				IPAddress: c.RealIP(),
				Reason:    reason,
			})
		}
		return err
	}

	if h.history != nil {
		if err := h.history.UpdateLastLogin(ctx, result.UserID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int("user_id", result.UserID).Msg("failed to update last login")
		}
	}
	h.record(ctx, user.LoginAttempt{
		UserID:    result.UserID,
		Status:    user.LoginSuccess,
		IPAddress: c.RealIP(),
	})

	return c.JSON(http.StatusOK, LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		Role:        result.Role,
	})
}

// record writes login history without affecting the response.
func (h *AuthHandler) record(ctx context.Context, attempt user.LoginAttempt) {
	if h.history == nil {
		return
	}
	if err := h.history.RecordLogin(ctx, attempt); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int("user_id", attempt.UserID).Msg("failed to record login history")
	}
}
