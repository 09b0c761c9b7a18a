package audit

import (
	"context"
	"time"

	"github.com/cherrycherry3/crt-backend/internal/auth"
	"github.com/cherrycherry3/crt-backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// EntityType is the kind of record an audited action touched.
type EntityType string

const (
	EntityCollege    EntityType = "College"
	EntityCourse     EntityType = "Course"
	EntityCourseFile EntityType = "CourseFile"
	EntityStudent    EntityType = "Student"
	EntityEnrollment EntityType = "Enrollment"
)

// Action is stored in audit_logs.action_type.
type Action string

const (
	ActionCreateCollege  Action = "create_college"
	ActionUpdateCollege  Action = "update_college"
	ActionDeleteCollege  Action = "delete_college"
	ActionCreateCourse   Action = "create_course"
	ActionUpdateCourse   Action = "update_course"
	ActionDeleteCourse   Action = "delete_course"
	ActionUploadFile     Action = "upload_course_file"
	ActionCreateStudent  Action = "create_student"
	ActionBulkUpload     Action = "bulk_upload_students"
	ActionAssignCourse   Action = "assign_course"
	ActionUpdateProgress Action = "update_course_progress"
)

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

const writeTimeout = 2 * time.Second

// Entry is one audit_logs row.
type Entry struct {
	UserID      *int
	Action      Action
	Description string
	EntityType  EntityType
	EntityID    *int
	NewValues   map[string]any
	Status      Status
	CreatedAt   time.Time
}

// Store persists entries.
type Store interface {
	InsertAuditLog(ctx context.Context, entry *Entry) error
}

// Logger writes audit entries off the request path. Failures are logged, never returned.
type Logger struct {
	store Store
	log   zerolog.Logger
	// done is signalled after each write attempt. Only set in tests.
	done chan<- struct{}
}

func NewLogger(store Store, log zerolog.Logger) *Logger {
	return &Logger{store: store, log: log}
}

// Record attaches the caller from the echo context and writes the entry asynchronously.
func (l *Logger) Record(c echo.Context, entry Entry) {
	if l == nil || l.store == nil {
		return
	}

	if identity, err := auth.GetIdentity(c); err == nil {
		id := identity.ID
		entry.UserID = &id
	}
	if entry.Status == "" {
		entry.Status = StatusSuccess
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.NewValues != nil {
		entry.NewValues = logger.SanitizeMap(entry.NewValues)
	}

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	go func() {
		defer cancel()
		if err := l.store.InsertAuditLog(ctx, &entry); err != nil {
			l.log.Error().
				Err(err).
				Str("action", string(entry.Action)).
				Str("request_id", requestID).
				Msg("audit log failed")
		}
		if l.done != nil {
			l.done <- struct{}{}
		}
	}()
}

// IntPtr is a convenience for optional entity ids.
func IntPtr(v int) *int {
	return &v
}
