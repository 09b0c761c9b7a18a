package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/labstack/echo/v4"
)

const (
	contentTypeJSON          = "application/json"
	maxStrictBodyBytes int64 = 1 << 20
)

// bindJSON decodes a single JSON document into dst and runs the registered
// validator over it. Unknown fields are ignored.
func bindJSON(c echo.Context, dst interface{}) error {
	if !strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), contentTypeJSON) {
		return apperrors.UnsupportedMedia(msgContentTypeJSONRequired)
	}

	body := io.LimitReader(c.Request().Body, maxStrictBodyBytes)
	decoder := json.NewDecoder(body)

	if err := decoder.Decode(dst); err != nil {
		return apperrors.Validation(msgInvalidRequestBody)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return apperrors.Validation(msgInvalidRequestBody)
	}

	if err := c.Validate(dst); err != nil {
		return apperrors.Validation(err.Error())
	}

	return nil
}

func pathID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, apperrors.Validation(fmt.Sprintf(msgInvalidPathParamFmt, name))
	}
	return id, nil
}

func optionalIntQuery(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf(msgInvalidQueryParamFmt, name))
	}
	return &v, nil
}

func optionalFloatQuery(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf(msgInvalidQueryParamFmt, name))
	}
	return &v, nil
}

func optionalIntForm(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.Validation(fmt.Sprintf(msgInvalidQueryParamFmt, name))
	}
	return &v, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
