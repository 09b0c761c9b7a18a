package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/cherrycherry3/crt-backend/internal/rbac"
	"github.com/cherrycherry3/crt-backend/internal/rbac/presets"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	e     *echo.Echo
	codec *TokenCodec
}

// newTestEnv wires the gate globally and guards a few routes the way the server does.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	codec := NewTokenCodec(testSecret, time.Hour)
	gate := NewMiddleware(codec)
	guard := NewGuard(rbac.MustNew(presets.Platform()))

	e := echo.New()
	e.Use(gate.Authenticate())

	whoami := func(c echo.Context) error {
		id, err := GetIdentity(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]any{
			"id":          id.ID,
			"role":        id.Role,
			"permissions": id.Permissions.List(),
		})
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	e.POST("/api/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	e.GET("/api/me", whoami)
	e.PUT("/api/admin/courses/:id", whoami, guard.RequirePermission(presets.ActionEdit, presets.ResourceCourses))
	e.GET("/api/student/dashboard", whoami, guard.RequirePermission(presets.ActionView, presets.ResourceStudentDashboard))

	return &testEnv{e: e, codec: codec}
}

func (env *testEnv) do(method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) bearer(t *testing.T, id int, role string, perms []string) string {
	t.Helper()
	token, err := env.codec.Issue(id, role, perms)
	require.NoError(t, err)
	return "Bearer " + token
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func signRaw(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestAuthenticate_Rejections(t *testing.T) {
	env := newTestEnv(t)
	expiry := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name          string
		authorization string
		wantDetail    string
	}{
		{"missing header", "", "Authorization header missing"},
		{"basic scheme", "Basic abc", "Invalid authorization format"},
		{"lowercase scheme", "bearer abc", "Invalid authorization format"},
		{"empty token", "Bearer    ", "Token not provided"},
		{"garbage token", "Bearer not-a-jwt", "Invalid or expired token"},
		{
			"missing subject",
			"Bearer " + signRaw(t, Claims{Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: expiry}}),
			"User identity missing in token",
		},
		{
			"non numeric subject",
			"Bearer " + signRaw(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc", ExpiresAt: expiry}}),
			"Invalid token payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, "/api/me", tt.authorization)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.wantDetail, detail(t, rec))
		})
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	token := signRaw(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "5",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})

	rec := env.do(http.MethodGet, "/api/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", detail(t, rec))
}

func TestAuthenticate_PublicPaths(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/api/auth/login", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_OptionsBypass(t *testing.T) {
	env := newTestEnv(t)
	env.e.OPTIONS("/api/me", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := env.do(http.MethodOptions, "/api/me", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthenticate_DefaultsRoleAndPermissions(t *testing.T) {
	env := newTestEnv(t)
	token := signRaw(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "9",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})

	rec := env.do(http.MethodGet, "/api/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ID          int      `json:"id"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 9, body.ID)
	assert.Equal(t, "USER", body.Role)
	assert.Empty(t, body.Permissions)
}

func TestRequirePermission(t *testing.T) {
	env := newTestEnv(t)

	t.Run("student cannot edit courses", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/api/admin/courses/1", env.bearer(t, 3, "STUDENT", []string{"view:student_dashboard"}))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "You do not have permission to perform this action", detail(t, rec))
	})

	t.Run("admin bypasses with no permissions", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/api/admin/courses/1", env.bearer(t, 1, "ADMIN", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("exact permission allows", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/student/dashboard", env.bearer(t, 3, "STUDENT", []string{"view:student_dashboard"}))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("permission match is case sensitive", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/student/dashboard", env.bearer(t, 3, "STUDENT", []string{"VIEW:student_dashboard"}))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("lowercase admin role is not the super role", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/api/admin/courses/1", env.bearer(t, 1, "admin", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wildcard grant is not expanded", func(t *testing.T) {
		rec := env.do(http.MethodPut, "/api/admin/courses/1", env.bearer(t, 1, "TEACHER", []string{"admin:*"}))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRequirePermission_NoIdentity(t *testing.T) {
	guard := NewGuard(rbac.MustNew(presets.Platform()))
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	h := guard.RequirePermission(presets.ActionView, presets.ResourceCourses)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	require.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", detail(t, rec))
}

func TestAuthenticate_ConcurrentRequestsAreIsolated(t *testing.T) {
	env := newTestEnv(t)

	const workers = 50
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			role, perm := "STUDENT", fmt.Sprintf("view:thing_%d", id)
			if id%2 == 0 {
				role = "TEACHER"
			}

			token, err := env.codec.Issue(id, role, []string{perm})
			if err != nil {
				errs <- err
				return
			}

			rec := env.do(http.MethodGet, "/api/me", "Bearer "+token)
			var body struct {
				ID          int      `json:"id"`
				Role        string   `json:"role"`
				Permissions []string `json:"permissions"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				errs <- err
				return
			}
			if body.ID != id || body.Role != role || len(body.Permissions) != 1 || body.Permissions[0] != perm {
				errs <- fmt.Errorf("request %d saw identity %+v", id, body)
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
