package http

import (
	"context"
	"errors"
	stdhttp "net/http"

	"github.com/cherrycherry3/crt-backend/internal/audit"
	"github.com/cherrycherry3/crt-backend/internal/auth"
	"github.com/cherrycherry3/crt-backend/internal/config"
	"github.com/cherrycherry3/crt-backend/internal/http/handler"
	"github.com/cherrycherry3/crt-backend/internal/http/middleware"
	"github.com/cherrycherry3/crt-backend/internal/rbac"
	"github.com/cherrycherry3/crt-backend/internal/rbac/presets"
	"github.com/cherrycherry3/crt-backend/pkg/validator"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// CourseStore serves both the admin catalogue and the college views of it.
type CourseStore interface {
	handler.CourseRepository
	handler.CollegeCourseRepository
}

// StudentStore resolves college admins and students and manages rosters.
type StudentStore interface {
	handler.StudentRepository
	handler.StudentResolver
}

type EnrollmentStore interface {
	handler.EnrollmentRepository
	handler.CourseAssigner
}

// DashboardCache is consulted by dashboard reads and bumped by writes.
type DashboardCache interface {
	handler.DashboardCache
	handler.CacheInvalidator
}

type ServerDependencies struct {
	Config      *config.Config
	Log         zerolog.Logger
	Tokens      auth.TokenValidator
	Checker     *rbac.Checker
	Verifier    handler.LoginVerifier
	Users       handler.LoginRecorder
	Colleges    handler.CollegeRepository
	Courses     CourseStore
	CourseFiles handler.CourseFileRepository
	Students    StudentStore
	Enrollments EnrollmentStore
	Dashboards  handler.DashboardRepository
	// Storage is nil when no bucket is configured.
	Storage        handler.ObjectStorage
	URLCache       handler.URLCache
	DashboardCache DashboardCache
	Hasher         handler.PasswordHasher
	Auditor        handler.Auditor
	Metrics        *middleware.Metrics
}

type Server struct {
	echo     *echo.Echo
	deps     *ServerDependencies
	limiters []*middleware.RateLimiter
}

func NewServer(deps *ServerDependencies) *Server {
	cfg := deps.Config

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = validator.New()
	e.IPExtractor = clientIPExtractor(&cfg.App)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	if deps.Auditor == nil {
		deps.Auditor = (*audit.Logger)(nil)
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = middleware.NewMetrics()
	}

	e.Use(middleware.RequestID(deps.Log))
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.Recover())
	e.Use(metrics.Middleware())
	e.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{
		HSTS:      cfg.App.IsProduction(),
		DocsPaths: []string{"/docs", "/redoc"},
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  cfg.App.CORSAllowOrigins,
		AllowMethods:  []string{stdhttp.MethodGet, stdhttp.MethodPost, stdhttp.MethodPut, stdhttp.MethodPatch, stdhttp.MethodDelete, stdhttp.MethodOptions},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))
	e.Use(echomiddleware.BodyLimit(cfg.App.MaxUploadSize))
	e.Use(auth.NewMiddleware(deps.Tokens).Authenticate())

	globalRateLimiter := middleware.NewGlobalRateLimiter()
	e.Use(globalRateLimiter.Middleware())

	strictRateLimiter := middleware.NewStrictRateLimiter()
	guard := auth.NewGuard(deps.Checker)
	require := guard.RequirePermission

	authHandler := handler.NewAuthHandler(deps.Verifier, deps.Users)
	collegeHandler := handler.NewCollegeHandler(deps.Colleges, deps.Auditor, deps.DashboardCache)
	courseHandler := handler.NewCourseHandler(deps.Courses, deps.Auditor, deps.DashboardCache)
	courseFileHandler := handler.NewCourseFileHandler(deps.CourseFiles, deps.Courses, deps.Storage, deps.URLCache, deps.Auditor)
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboards, deps.DashboardCache, deps.Students, deps.Students)
	collegeStudentHandler := handler.NewCollegeStudentHandler(deps.Students, deps.Hasher, deps.Auditor, deps.DashboardCache)
	collegeCourseHandler := handler.NewCollegeCourseHandler(deps.Students, deps.Courses, deps.Enrollments, deps.Auditor, deps.DashboardCache)
	studentHandler := handler.NewStudentPortalHandler(deps.Students, deps.Enrollments, deps.Auditor, deps.DashboardCache)

	e.GET("/health", handler.Health)
	e.GET("/openapi.json", handler.OpenAPI)
	e.GET("/docs", handler.SwaggerUI)
	e.GET("/redoc", handler.ReDoc)
	e.GET("/metrics", metrics.Handler(), require(presets.ActionView, presets.ResourceMetrics))

	e.POST("/api/auth/login", authHandler.Login, strictRateLimiter.Middleware())

	admin := e.Group("/api/admin")
	admin.POST("/colleges", collegeHandler.Create, require(presets.ActionCreate, presets.ResourceColleges))
	admin.GET("/colleges", collegeHandler.List, require(presets.ActionView, presets.ResourceColleges))
	admin.GET("/colleges/:id", collegeHandler.Get, require(presets.ActionView, presets.ResourceColleges))
	admin.PUT("/colleges/:id", collegeHandler.Update, require(presets.ActionEdit, presets.ResourceColleges))
	admin.DELETE("/colleges/:id", collegeHandler.Delete, require(presets.ActionDelete, presets.ResourceColleges))

	admin.POST("/courses", courseHandler.Create, require(presets.ActionCreate, presets.ResourceCourses))
	admin.GET("/courses", courseHandler.List, require(presets.ActionView, presets.ResourceCourses))
	admin.GET("/courses/:id", courseHandler.Get, require(presets.ActionView, presets.ResourceCourses))
	admin.PUT("/courses/:id", courseHandler.Update, require(presets.ActionEdit, presets.ResourceCourses))
	admin.DELETE("/courses/:id", courseHandler.Delete, require(presets.ActionDelete, presets.ResourceCourses))

	admin.POST("/courses/:id/files", courseFileHandler.Upload, require(presets.ActionUpload, presets.ResourceCourseFiles))
	admin.GET("/courses/:id/files", courseFileHandler.List, require(presets.ActionView, presets.ResourceCourseFiles))
	admin.GET("/courses/:id/pdfs", courseFileHandler.ListPDFs, require(presets.ActionView, presets.ResourceCourseFiles))
	admin.GET("/courses/course-files/:file_id/stream", courseFileHandler.Stream, require(presets.ActionView, presets.ResourceCourseFiles))

	admin.GET("/admin/dashboard", dashboardHandler.Admin, require(presets.ActionView, presets.ResourceAdminDashboard))
	admin.GET("/tests", dashboardHandler.AdminTests, require(presets.ActionView, presets.ResourceTests))

	college := e.Group("/api/college")
	college.GET("/dashboard", dashboardHandler.College, require(presets.ActionView, presets.ResourceCollegeDashboard))
	college.GET("/students", collegeStudentHandler.List, require(presets.ActionView, presets.ResourceStudents))
	college.GET("/students/filter", collegeStudentHandler.Filter, require(presets.ActionView, presets.ResourceStudents))
	college.GET("/students/search", collegeStudentHandler.Search, require(presets.ActionView, presets.ResourceStudents))
	college.GET("/students/progress", collegeStudentHandler.Progress, require(presets.ActionView, presets.ResourceStudents))
	college.POST("/students", collegeStudentHandler.Create, require(presets.ActionCreate, presets.ResourceStudents))
	college.POST("/students/bulk-upload", collegeStudentHandler.BulkUpload, require(presets.ActionCreate, presets.ResourceStudents))
	// Paths used by earlier clients.
	college.POST("", collegeStudentHandler.Create, require(presets.ActionCreate, presets.ResourceStudents))
	college.POST("/bulk-upload", collegeStudentHandler.BulkUpload, require(presets.ActionCreate, presets.ResourceStudents))
	college.POST("/courses/assign", collegeCourseHandler.Assign, require(presets.ActionAssign, presets.ResourceCourses))
	college.GET("/courses", collegeCourseHandler.List, require(presets.ActionView, presets.ResourceCourses))
	college.GET("/courses/available", collegeCourseHandler.Available, require(presets.ActionView, presets.ResourceCourses))

	student := e.Group("/api/student")
	student.GET("/dashboard", dashboardHandler.Student, require(presets.ActionView, presets.ResourceStudentDashboard))
	student.GET("/courses", studentHandler.Courses, require(presets.ActionView, presets.ResourceStudentCourses))
	student.PATCH("/courses/:course_id/progress", studentHandler.UpdateProgress, require(presets.ActionUpdate, presets.ResourceStudentCourses))

	return &Server{
		echo:     e,
		deps:     deps,
		limiters: []*middleware.RateLimiter{globalRateLimiter, strictRateLimiter},
	}
}

// clientIPExtractor trusts X-Forwarded-For only from the configured proxy
// ranges. Without any, the peer address is the client.
func clientIPExtractor(app *config.AppConfig) echo.IPExtractor {
	ranges, err := app.TrustedProxyRanges()
	if err != nil || len(ranges) == 0 {
		return echo.ExtractIPDirect()
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, r := range ranges {
		options = append(options, echo.TrustIPRange(r))
	}
	return echo.ExtractIPFromXFFHeader(options...)
}

// PruneRateLimiters drops idle per-caller buckets and returns how many went.
func (s *Server) PruneRateLimiters() int {
	removed := 0
	for _, rl := range s.limiters {
		removed += rl.Prune()
	}
	return removed
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start(address string) error {
	if err := s.echo.Start(address); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
