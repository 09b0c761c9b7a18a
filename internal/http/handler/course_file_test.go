package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/cherrycherry3/crt-backend/internal/audit"
	"github.com/cherrycherry3/crt-backend/internal/domain/course"
	"github.com/cherrycherry3/crt-backend/internal/domain/coursefile"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadRequest(t *testing.T, courseID, filename, contentType string, fields map[string]string) request {
	body, ct := multipartBody(t, filename, contentType, []byte("%PDF-1.7 test"), fields)
	return request{
		method:      http.MethodPost,
		path:        "/api/admin/courses/" + courseID + "/files",
		body:        body,
		contentType: ct,
		params:      map[string]string{"id": courseID},
	}
}

func knownCourses() *fakeCourses {
	return &fakeCourses{courses: map[int]*course.Course{3: {ID: 3, Title: "Aptitude"}}}
}

func TestUpload_StoresObjectAndRow(t *testing.T) {
	files := &fakeCourseFiles{}
	storage := &fakeStorage{}
	auditor := &recordingAuditor{}
	h := NewCourseFileHandler(files, knownCourses(), storage, nil, auditor)

	c, rec := newContext(t, uploadRequest(t, "3", "week1.pdf", "application/pdf", map[string]string{
		"file_title": "Week 1", "duration_seconds": "90",
	}))

	require.NoError(t, h.Upload(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, files.created, 1)
	in := files.created[0]
	assert.Equal(t, "Courses/3/uuid_week1.pdf", in.S3Key)
	assert.Equal(t, "https://bucket.s3.region.amazonaws.com/Courses/3/uuid_week1.pdf", in.FileURL)
	assert.Equal(t, coursefile.TypePDF, in.FileType)
	assert.Equal(t, "Week 1", in.FileTitle)
	require.NotNil(t, in.DurationSeconds)
	assert.Equal(t, 90, *in.DurationSeconds)
	assert.Equal(t, "%PDF-1.7 test", storage.puts[in.S3Key])

	got := decode[CourseFileResponse](t, rec)
	assert.Equal(t, coursefile.TypePDF, got.FileType)
	assert.Equal(t, []audit.Action{audit.ActionUploadFile}, auditor.actions())
}

func TestUpload_TitleDefaultsToFileName(t *testing.T) {
	files := &fakeCourseFiles{}
	h := NewCourseFileHandler(files, knownCourses(), &fakeStorage{}, nil, &recordingAuditor{})

	c, _ := newContext(t, uploadRequest(t, "3", "intro.mp4", "video/mp4", nil))

	require.NoError(t, h.Upload(c))
	require.Len(t, files.created, 1)
	assert.Equal(t, "intro.mp4", files.created[0].FileTitle)
	assert.Equal(t, coursefile.TypeVideo, files.created[0].FileType)
}

func TestUpload_RemovesObjectWhenRowFails(t *testing.T) {
	files := &fakeCourseFiles{err: apperrors.InternalServer("insert failed", errors.New("boom"))}
	storage := &fakeStorage{}
	auditor := &recordingAuditor{}
	h := NewCourseFileHandler(files, knownCourses(), storage, nil, auditor)

	c, _ := newContext(t, uploadRequest(t, "3", "notes.pdf", "application/pdf", nil))

	require.Error(t, h.Upload(c))
	assert.Equal(t, []string{"Courses/3/uuid_notes.pdf"}, storage.deleted)
	assert.Empty(t, auditor.actions())
}

func TestUpload_Rejections(t *testing.T) {
	t.Run("unknown course", func(t *testing.T) {
		storage := &fakeStorage{}
		h := NewCourseFileHandler(&fakeCourseFiles{}, knownCourses(), storage, nil, &recordingAuditor{})
		c, _ := newContext(t, uploadRequest(t, "8", "a.pdf", "application/pdf", nil))

		assertAppError(t, h.Upload(c), apperrors.ErrNotFound, "Course not found")
		assert.Empty(t, storage.puts)
	})

	t.Run("storage disabled", func(t *testing.T) {
		h := NewCourseFileHandler(&fakeCourseFiles{}, knownCourses(), nil, nil, &recordingAuditor{})
		c, _ := newContext(t, uploadRequest(t, "3", "a.pdf", "application/pdf", nil))

		var he *echo.HTTPError
		require.ErrorAs(t, h.Upload(c), &he)
		assert.Equal(t, http.StatusServiceUnavailable, he.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		h := NewCourseFileHandler(&fakeCourseFiles{}, knownCourses(), &fakeStorage{}, nil, &recordingAuditor{})
		c, _ := newContext(t, request{
			method: http.MethodPost, path: "/api/admin/courses/3/files",
			params: map[string]string{"id": "3"},
		})

		assertAppError(t, h.Upload(c), apperrors.ErrValidation, msgFileRequired)
	})

	t.Run("upload error", func(t *testing.T) {
		files := &fakeCourseFiles{}
		h := NewCourseFileHandler(files, knownCourses(), &fakeStorage{putErr: errors.New("s3 down")}, nil, &recordingAuditor{})
		c, _ := newContext(t, uploadRequest(t, "3", "a.pdf", "application/pdf", nil))

		assertAppError(t, h.Upload(c), apperrors.ErrInternalServer, msgUploadFailed)
		assert.Empty(t, files.created)
	})
}

func streamRequest(id string) request {
	return request{
		method: http.MethodGet,
		path:   "/api/admin/courses/course-files/" + id + "/stream",
		params: map[string]string{"file_id": id},
	}
}

func TestStream_PresignsAndCaches(t *testing.T) {
	files := &fakeCourseFiles{pdfs: map[int]*coursefile.CourseFile{
		4: {ID: 4, S3Key: "Courses/3/uuid_a.pdf", FileURL: "https://public/a.pdf"},
	}}
	storage := &fakeStorage{}
	urls := mapURLCache{}
	h := NewCourseFileHandler(files, knownCourses(), storage, urls, nil)

	for i := 0; i < 2; i++ {
		c, rec := newContext(t, streamRequest("4"))
		require.NoError(t, h.Stream(c))
		assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, "https://signed.example/Courses/3/uuid_a.pdf?sig=1", rec.Header().Get(echo.HeaderLocation))
	}

	assert.Equal(t, 1, storage.presigns)
	assert.Contains(t, urls, "pdf:4")
}

func TestStream_LegacyRowRedirectsToPublicURL(t *testing.T) {
	files := &fakeCourseFiles{pdfs: map[int]*coursefile.CourseFile{
		6: {ID: 6, FileURL: "https://public/legacy.pdf"},
	}}
	h := NewCourseFileHandler(files, knownCourses(), nil, nil, nil)

	c, rec := newContext(t, streamRequest("6"))
	require.NoError(t, h.Stream(c))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "https://public/legacy.pdf", rec.Header().Get(echo.HeaderLocation))
}

func TestStream_UnknownPDF(t *testing.T) {
	h := NewCourseFileHandler(&fakeCourseFiles{}, knownCourses(), &fakeStorage{}, nil, nil)

	c, _ := newContext(t, streamRequest("99"))
	assertAppError(t, h.Stream(c), apperrors.ErrNotFound, "PDF not found")
}

func TestListPDFs(t *testing.T) {
	title := "Week 1"
	files := &fakeCourseFiles{listed: []*coursefile.CourseFile{
		{ID: 1, CourseID: 3, FileName: "w1.pdf", FileTitle: &title, FileURL: "https://public/w1.pdf"},
	}}
	h := NewCourseFileHandler(files, knownCourses(), nil, nil, nil)

	c, rec := newContext(t, request{
		method: http.MethodGet, path: "/api/admin/courses/3/pdfs",
		params: map[string]string{"id": "3"},
	})

	require.NoError(t, h.ListPDFs(c))
	got := decode[PDFListResponse](t, rec)
	assert.Equal(t, 3, got.CourseID)
	assert.Equal(t, 1, got.TotalPDFs)
	assert.Equal(t, "w1.pdf", got.Files[0].FileName)
}
