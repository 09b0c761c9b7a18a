package handler

import (
	"context"
	"io"
	"time"

	"github.com/cherrycherry3/crt-backend/internal/audit"
	"github.com/cherrycherry3/crt-backend/internal/auth"
	"github.com/cherrycherry3/crt-backend/internal/domain/college"
	"github.com/cherrycherry3/crt-backend/internal/domain/course"
	"github.com/cherrycherry3/crt-backend/internal/domain/coursefile"
	"github.com/cherrycherry3/crt-backend/internal/domain/dashboard"
	"github.com/cherrycherry3/crt-backend/internal/domain/enrollment"
	"github.com/cherrycherry3/crt-backend/internal/domain/student"
	"github.com/cherrycherry3/crt-backend/internal/domain/user"
	"github.com/labstack/echo/v4"
)

// Consumer-side interfaces defined by handlers
// Each interface contains only the methods needed by the specific handler

// AuthHandler interfaces
type LoginVerifier interface {
	Verify(ctx context.Context, identifier, plain, role string) (*auth.LoginResult, int, error)
}

type LoginRecorder interface {
	UpdateLastLogin(ctx context.Context, id int) error
	RecordLogin(ctx context.Context, attempt user.LoginAttempt) error
}

// CollegeHandler interfaces
type CollegeRepository interface {
	Create(ctx context.Context, input college.CreateCollegeInput) (*college.College, error)
	ListActive(ctx context.Context) ([]*college.College, error)
	GetByID(ctx context.Context, id int) (*college.College, error)
	Update(ctx context.Context, id int, input college.UpdateCollegeInput) (*college.College, error)
	SoftDelete(ctx context.Context, id int) error
}

// CourseHandler interfaces
type CourseRepository interface {
	Create(ctx context.Context, input course.CreateCourseInput) (*course.Course, error)
	ListActive(ctx context.Context) ([]*course.Course, error)
	GetByID(ctx context.Context, id int) (*course.Course, error)
	Update(ctx context.Context, id int, input course.UpdateCourseInput) (*course.Course, error)
	SoftDelete(ctx context.Context, id int) error
}

// CourseFileHandler interfaces
type CourseGetter interface {
	GetByID(ctx context.Context, id int) (*course.Course, error)
}

type CourseFileRepository interface {
	Create(ctx context.Context, input coursefile.CreateCourseFileInput) (*coursefile.CourseFile, error)
	ListByCourse(ctx context.Context, courseID int) ([]*coursefile.CourseFile, error)
	ListPublishedPDFs(ctx context.Context, courseID int) ([]*coursefile.CourseFile, error)
	GetPDF(ctx context.Context, id int) (*coursefile.CourseFile, error)
}

type ObjectStorage interface {
	CourseObjectKey(courseID int, filename string) string
	PutObject(ctx context.Context, key string, body io.ReadSeeker, contentType string) (string, error)
	DeleteObject(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
	PresignExpiry() time.Duration
}

type URLCache interface {
	Get(key string) (string, bool)
	Set(key, url string, ttl time.Duration)
}

// College admin interfaces
type CollegeResolver interface {
	CollegeIDForAdmin(ctx context.Context, userID int) (int, error)
}

type StudentRepository interface {
	CollegeResolver
	Create(ctx context.Context, input student.CreateStudentInput) (*student.Student, error)
	List(ctx context.Context, collegeID int) ([]*student.Summary, error)
	Filter(ctx context.Context, collegeID int, f student.Filter) ([]*student.Summary, error)
	Search(ctx context.Context, collegeID int, q string) ([]*student.Summary, error)
	Progress(ctx context.Context, collegeID int) ([]*student.Progress, error)
}

type CollegeCourseRepository interface {
	ListForCollege(ctx context.Context, collegeID int) ([]*course.CollegeCourse, error)
	ListAvailableForCollege(ctx context.Context, collegeID int) ([]*course.Course, error)
}

type CourseAssigner interface {
	AssignToCohort(ctx context.Context, input enrollment.AssignInput) (int, error)
}

// Student interfaces
type StudentResolver interface {
	GetByUserID(ctx context.Context, userID int) (*student.Student, error)
}

type EnrollmentRepository interface {
	ListForStudent(ctx context.Context, studentID int) ([]*enrollment.StudentCourse, error)
	UpdateProgress(ctx context.Context, update enrollment.ProgressUpdate) (*enrollment.Enrollment, error)
}

// DashboardHandler interfaces
type DashboardRepository interface {
	Admin(ctx context.Context) (*dashboard.Admin, error)
	College(ctx context.Context, collegeID int) (*dashboard.College, error)
	Student(ctx context.Context, studentID int) (*dashboard.Student, error)
}

type DashboardCache interface {
	Key(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// CacheInvalidator drops cached dashboards after writes that change their figures.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Shared
type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Auditor interface {
	Record(c echo.Context, entry audit.Entry)
}
