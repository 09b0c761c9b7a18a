package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/cherrycherry3/crt-backend/internal/audit"
	"github.com/cherrycherry3/crt-backend/internal/auth"
	"github.com/cherrycherry3/crt-backend/internal/domain/course"
	"github.com/cherrycherry3/crt-backend/internal/domain/coursefile"
	"github.com/cherrycherry3/crt-backend/internal/domain/enrollment"
	"github.com/cherrycherry3/crt-backend/internal/domain/student"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/cherrycherry3/crt-backend/pkg/validator"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// request builds an echo context carrying an optional identity.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	identity    *auth.Identity
	params      map[string]string
}

func newContext(t *testing.T, r request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	req := httptest.NewRequest(r.method, r.path, r.body)
	if r.contentType != "" {
		req.Header.Set(echo.HeaderContentType, r.contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if len(r.params) > 0 {
		names := make([]string, 0, len(r.params))
		values := make([]string, 0, len(r.params))
		for k, v := range r.params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if r.identity != nil {
		auth.SetIdentity(c, r.identity)
	}
	return c, rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// multipartBody returns a body with a single file part plus extra form fields.
func multipartBody(t *testing.T, filename, contentType string, content []byte, fields map[string]string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	if contentType != "" {
		header["Content-Type"] = []string{contentType}
	}
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func assertAppError(t *testing.T, err error, sentinel error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	got, ok := apperrors.Message(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	assert.Equal(t, msg, got)
}

func collegeAdmin(id int) *auth.Identity {
	return &auth.Identity{ID: id, Role: "COLLEGE_ADMIN", Permissions: auth.NewPermissionSet(nil)}
}

func studentIdentity(id int) *auth.Identity {
	return &auth.Identity{ID: id, Role: "STUDENT", Permissions: auth.NewPermissionSet(nil)}
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *recordingAuditor) Record(_ echo.Context, entry audit.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAuditor) actions() []audit.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]audit.Action, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type countingInvalidator struct{ bumps int }

func (c *countingInvalidator) Bump(context.Context) error {
	c.bumps++
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

// fakeStudents implements StudentRepository and StudentResolver.
type fakeStudents struct {
	colleges  map[int]int
	profiles  map[int]*student.Student
	created   []student.CreateStudentInput
	createErr func(student.CreateStudentInput) error
	summaries []*student.Summary
	lastF     student.Filter
	lastQ     string
	progress  []*student.Progress
}

func (f *fakeStudents) CollegeIDForAdmin(_ context.Context, userID int) (int, error) {
	if id, ok := f.colleges[userID]; ok {
		return id, nil
	}
	return 0, apperrors.Forbidden("College admin not mapped to any college")
}

func (f *fakeStudents) GetByUserID(_ context.Context, userID int) (*student.Student, error) {
	if s, ok := f.profiles[userID]; ok {
		return s, nil
	}
	return nil, apperrors.NotFound("Student profile not found")
}

func (f *fakeStudents) Create(_ context.Context, in student.CreateStudentInput) (*student.Student, error) {
	if f.createErr != nil {
		if err := f.createErr(in); err != nil {
			return nil, err
		}
	}
	f.created = append(f.created, in)
	return &student.Student{
		ID:               len(f.created),
		CollegeID:        in.CollegeID,
		RollNumber:       in.RollNumber,
		StudentUniqueID:  student.UniqueID(in.CollegeID, in.RollNumber),
		EnrollmentStatus: student.StatusActive,
	}, nil
}

func (f *fakeStudents) List(context.Context, int) ([]*student.Summary, error) {
	return f.summaries, nil
}

func (f *fakeStudents) Filter(_ context.Context, _ int, flt student.Filter) ([]*student.Summary, error) {
	f.lastF = flt
	return f.summaries, nil
}

func (f *fakeStudents) Search(_ context.Context, _ int, q string) ([]*student.Summary, error) {
	f.lastQ = q
	return f.summaries, nil
}

func (f *fakeStudents) Progress(context.Context, int) ([]*student.Progress, error) {
	return f.progress, nil
}

type fakeCourses struct {
	courses map[int]*course.Course
}

func (f *fakeCourses) GetByID(_ context.Context, id int) (*course.Course, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, apperrors.NotFound("Course not found")
}

type fakeCourseFiles struct {
	created []coursefile.CreateCourseFileInput
	err     error
	pdfs    map[int]*coursefile.CourseFile
	listed  []*coursefile.CourseFile
}

func (f *fakeCourseFiles) Create(_ context.Context, in coursefile.CreateCourseFileInput) (*coursefile.CourseFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	title := in.FileTitle
	size := in.FileSize
	mime := in.MimeType
	return &coursefile.CourseFile{
		ID:        len(f.created),
		CourseID:  in.CourseID,
		FileName:  in.FileName,
		FileTitle: &title,
		FileType:  in.FileType,
		FileSize:  &size,
		MimeType:  &mime,
		FileURL:   in.FileURL,
		S3Key:     in.S3Key,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeCourseFiles) ListByCourse(context.Context, int) ([]*coursefile.CourseFile, error) {
	return f.listed, nil
}

func (f *fakeCourseFiles) ListPublishedPDFs(context.Context, int) ([]*coursefile.CourseFile, error) {
	return f.listed, nil
}

func (f *fakeCourseFiles) GetPDF(_ context.Context, id int) (*coursefile.CourseFile, error) {
	if p, ok := f.pdfs[id]; ok {
		return p, nil
	}
	return nil, apperrors.NotFound("PDF not found")
}

type fakeStorage struct {
	puts     map[string]string
	deleted  []string
	putErr   error
	presigns int
}

func (s *fakeStorage) CourseObjectKey(courseID int, filename string) string {
	return "Courses/" + strconv.Itoa(courseID) + "/uuid_" + filename
}

func (s *fakeStorage) PutObject(_ context.Context, key string, body io.ReadSeeker, _ string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	raw, _ := io.ReadAll(body)
	if s.puts == nil {
		s.puts = map[string]string{}
	}
	s.puts[key] = string(raw)
	return "https://bucket.s3.region.amazonaws.com/" + key, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) PresignGet(_ context.Context, key string) (string, error) {
	s.presigns++
	return "https://signed.example/" + key + "?sig=1", nil
}

func (s *fakeStorage) PresignExpiry() time.Duration { return 15 * time.Minute }

type mapURLCache map[string]string

func (m mapURLCache) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapURLCache) Set(key, url string, _ time.Duration) { m[key] = url }

type fakeEnrollments struct {
	rows      []*enrollment.StudentCourse
	updates   []enrollment.ProgressUpdate
	assigned  int
	assignErr error
	lastAsg   enrollment.AssignInput
}

func (f *fakeEnrollments) ListForStudent(context.Context, int) ([]*enrollment.StudentCourse, error) {
	return f.rows, nil
}

func (f *fakeEnrollments) UpdateProgress(_ context.Context, u enrollment.ProgressUpdate) (*enrollment.Enrollment, error) {
	if u.CourseID == 404 {
		return nil, apperrors.NotFound("Course not assigned to this student")
	}
	f.updates = append(f.updates, u)
	status, ok := enrollment.StatusForProgress(u.ProgressPercentage)
	if !ok {
		status = enrollment.StatusAssigned
	}
	at := u.At
	return &enrollment.Enrollment{
		ID:                 7,
		StudentID:          u.StudentID,
		CourseID:           u.CourseID,
		Status:             status,
		ProgressPercentage: u.ProgressPercentage,
		LastAccessedAt:     &at,
	}, nil
}

func (f *fakeEnrollments) AssignToCohort(_ context.Context, in enrollment.AssignInput) (int, error) {
	f.lastAsg = in
	return f.assigned, f.assignErr
}

