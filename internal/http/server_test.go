package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cherrycherry3/crt-backend/internal/auth"
	"github.com/cherrycherry3/crt-backend/internal/config"
	"github.com/cherrycherry3/crt-backend/internal/domain/college"
	"github.com/cherrycherry3/crt-backend/internal/domain/student"
	"github.com/cherrycherry3/crt-backend/internal/rbac"
	"github.com/cherrycherry3/crt-backend/internal/rbac/presets"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "q7Vx2LmP9sKd4RtZ8wYbN3cHfJ6gE1aU"

type stubColleges struct{}

func (stubColleges) Create(context.Context, college.CreateCollegeInput) (*college.College, error) {
	return nil, apperrors.InternalServer("not used", nil)
}

func (stubColleges) ListActive(context.Context) ([]*college.College, error) {
	return []*college.College{{ID: 1, Name: "Sunrise", IsActive: true}}, nil
}

func (stubColleges) GetByID(context.Context, int) (*college.College, error) {
	return nil, apperrors.NotFound("College not found")
}

func (stubColleges) Update(context.Context, int, college.UpdateCollegeInput) (*college.College, error) {
	return nil, apperrors.NotFound("College not found")
}

func (stubColleges) SoftDelete(context.Context, int) error {
	return apperrors.NotFound("College not found")
}

// stubStudents maps college admin 10 to college 2 and returns one student.
type stubStudents struct{}

func (stubStudents) CollegeIDForAdmin(_ context.Context, userID int) (int, error) {
	if userID == 10 {
		return 2, nil
	}
	return 0, apperrors.Forbidden("College admin not mapped to any college")
}

func (stubStudents) GetByUserID(context.Context, int) (*student.Student, error) {
	return nil, apperrors.NotFound("Student profile not found")
}

func (stubStudents) Create(context.Context, student.CreateStudentInput) (*student.Student, error) {
	return nil, apperrors.InternalServer("not used", nil)
}

func (stubStudents) List(_ context.Context, collegeID int) ([]*student.Summary, error) {
	return []*student.Summary{{StudentID: collegeID, Name: "Asha", Status: student.StatusActive}}, nil
}

func (stubStudents) Filter(context.Context, int, student.Filter) ([]*student.Summary, error) {
	return nil, nil
}

func (stubStudents) Search(context.Context, int, string) ([]*student.Summary, error) {
	return nil, nil
}

func (stubStudents) Progress(context.Context, int) ([]*student.Progress, error) {
	return nil, nil
}

type testServer struct {
	handler http.Handler
	tokens  *auth.TokenCodec
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithApp(t, func(*config.AppConfig) {})
}

func newTestServerWithApp(t *testing.T, mutate func(app *config.AppConfig)) *testServer {
	t.Helper()

	tokens := auth.NewTokenCodec(testSecret, time.Hour)
	cfg := &config.Config{
		Server: config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second},
		App:    config.AppConfig{Env: "test", CORSAllowOrigins: []string{"*"}, MaxUploadSize: "1M"},
	}
	mutate(&cfg.App)

	srv := NewServer(&ServerDependencies{
		Config:   cfg,
		Log:      zerolog.Nop(),
		Tokens:   tokens,
		Checker:  rbac.MustNew(presets.Platform()),
		Colleges: stubColleges{},
		Students: stubStudents{},
	})

	return &testServer{handler: srv.Handler(), tokens: tokens}
}

func (s *testServer) token(t *testing.T, id int, role string, permissions ...string) string {
	t.Helper()
	tok, err := s.tokens.Issue(id, role, permissions)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (s *testServer) do(method, path, authorization, contentType, body string) *httptest.ResponseRecorder {
	return s.doFrom("", method, path, authorization, contentType, body)
}

// doFrom sends the request with forwardedFor as X-Forwarded-For. httptest
// requests always arrive from 192.0.2.1.
func (s *testServer) doFrom(forwardedFor, method, path, authorization, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body["detail"]
}

func TestServer_PublicRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","service":"CRT Backend","version":"1.0.0"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = s.do(http.MethodGet, "/openapi.json", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/docs", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "cdn.jsdelivr.net")
}

func TestServer_AuthenticationGate(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name          string
		authorization string
		want          string
	}{
		{"missing header", "", "Authorization header missing"},
		{"wrong scheme", "Token abc", "Invalid authorization format"},
		{"empty token", "Bearer ", "Token not provided"},
		{"garbage", "Bearer not.a.jwt", "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodGet, "/api/admin/colleges", tt.authorization, "", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.want, detail(t, rec))
		})
	}
}

func TestServer_PermissionGuard(t *testing.T) {
	s := newTestServer(t)

	admin := s.token(t, 1, "ADMIN", "admin:*")
	collegeAdmin := s.token(t, 10, "COLLEGE_ADMIN", "view:students", "view:college_dashboard")
	studentTok := s.token(t, 20, "STUDENT", "view:student_courses")

	rec := s.do(http.MethodGet, "/api/admin/colleges", admin, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Sunrise"`)

	rec = s.do(http.MethodGet, "/api/admin/colleges", collegeAdmin, "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You do not have permission to perform this action", detail(t, rec))

	rec = s.do(http.MethodGet, "/api/college/students", collegeAdmin, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"student_id":2`)

	rec = s.do(http.MethodGet, "/api/college/students", studentTok, "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The super role passes guards for permissions it does not literally hold.
	rec = s.do(http.MethodGet, "/api/admin/tests", admin, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Admin tests module initialized"}`, rec.Body.String())
}

func TestServer_ErrorsRenderDetail(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, 1, "ADMIN")

	rec := s.do(http.MethodGet, "/api/admin/colleges/99", admin, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "College not found", detail(t, rec))

	rec = s.do(http.MethodGet, "/api/admin/colleges/abc", admin, "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "id: must be a positive integer", detail(t, rec))

	rec = s.do(http.MethodPost, "/api/auth/login", "", "application/json", `{"email":"a@b.co","password":"x","role":"ROOT"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "role: oneof=ADMIN COLLEGE_ADMIN TEACHER STUDENT", detail(t, rec))

	rec = s.do(http.MethodPost, "/api/admin/courses/1/files", admin, "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "File storage is not configured", detail(t, rec))
}

func TestServer_MetricsRequirePermission(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/metrics", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.do(http.MethodGet, "/health", "", "", "")
	rec = s.do(http.MethodGet, "/metrics", s.token(t, 1, "ADMIN"), "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `crt_http_requests_total{code="200",method="GET",route="/health"}`)
}

func countThrottledLogins(s *testServer, forwardedFor func(i int) string) int {
	throttled := 0
	for i := 0; i < 30; i++ {
		rec := s.doFrom(forwardedFor(i), http.MethodPost, "/api/auth/login", "", "application/json", `{}`)
		if rec.Code == http.StatusTooManyRequests {
			throttled++
		}
	}
	return throttled
}

func TestServer_LoginLimitIgnoresForwardedFor(t *testing.T) {
	s := newTestServer(t)

	throttled := countThrottledLogins(s, func(i int) string {
		return fmt.Sprintf("203.0.113.%d", i)
	})
	assert.Greater(t, throttled, 0)
}

func TestServer_LoginLimitTrustsConfiguredProxy(t *testing.T) {
	s := newTestServerWithApp(t, func(app *config.AppConfig) {
		app.TrustedProxies = []string{"192.0.2.0/24"}
	})

	// Each forwarded client gets its own bucket behind a trusted proxy.
	distinct := countThrottledLogins(s, func(i int) string {
		return fmt.Sprintf("203.0.113.%d", i)
	})
	assert.Zero(t, distinct)

	same := countThrottledLogins(s, func(int) string { return "198.51.100.7" })
	assert.Greater(t, same, 0)
}

func TestServer_StudentCreateLegacyPaths(t *testing.T) {
	s := newTestServer(t)
	collegeAdmin := s.token(t, 10, "COLLEGE_ADMIN", "create:students")

	for _, path := range []string{"/api/college", "/api/college/students"} {
		rec := s.do(http.MethodPost, path, collegeAdmin, "application/json", `{}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, path)
		assert.Equal(t, "name: required", detail(t, rec))
	}

	for _, path := range []string{"/api/college/bulk-upload", "/api/college/students/bulk-upload"} {
		rec := s.do(http.MethodPost, path, collegeAdmin, "", "")
		assert.NotEqual(t, http.StatusNotFound, rec.Code, path)
		assert.NotEqual(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
}
