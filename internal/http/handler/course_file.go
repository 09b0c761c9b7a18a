package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/cherrycherry3/crt-backend/internal/audit"
	"github.com/cherrycherry3/crt-backend/internal/domain/coursefile"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/cherrycherry3/crt-backend/pkg/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const streamCacheKeyPrefix = "pdf:"

type CourseFileHandler struct {
	files   CourseFileRepository
	courses CourseGetter
	storage ObjectStorage
	urls    URLCache
	audit   Auditor
}

// NewCourseFileHandler accepts a nil storage when no bucket is configured; uploads
// and streaming then fail with 503.
func NewCourseFileHandler(files CourseFileRepository, courses CourseGetter, storage ObjectStorage, urls URLCache, auditor Auditor) *CourseFileHandler {
	return &CourseFileHandler{
		files:   files,
		courses: courses,
		storage: storage,
		urls:    urls,
		audit:   auditor,
	}
}

func (h *CourseFileHandler) Upload(c echo.Context) error {
	courseID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	if h.storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, msgStorageNotConfigured)
	}

	header, err := c.FormFile(formFieldFile)
	if err != nil {
		return apperrors.Validation(msgFileRequired)
	}

	fileName := strings.TrimSpace(header.Filename)
	if err := validator.FileName(fileName); err != nil {
		return apperrors.BadRequest(err.Error())
	}

	durationSeconds, err := optionalIntForm(c, formFieldDurationSeconds)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if _, err := h.courses.GetByID(ctx, courseID); err != nil {
		return err
	}

	src, err := header.Open()
	if err != nil {
		return apperrors.InternalServer(msgUploadFailed, err)
	}
	defer src.Close()

	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	key := h.storage.CourseObjectKey(courseID, fileName)
	fileURL, err := h.storage.PutObject(ctx, key, src, contentType)
	if err != nil {
		return apperrors.InternalServer(msgUploadFailed, err)
	}

	title := strings.TrimSpace(c.FormValue(formFieldFileTitle))
	if title == "" {
		title = fileName
	}

	created, err := h.files.Create(ctx, coursefile.CreateCourseFileInput{
		CourseID:        courseID,
		FileName:        fileName,
		FileTitle:       title,
		FileDescription: optionalString(c.FormValue(formFieldFileDescription)),
		FileType:        coursefile.TypeFromMIME(contentType),
		FileSize:        header.Size,
		MimeType:        contentType,
		FileURL:         fileURL,
		S3Key:           key,
		DurationSeconds: durationSeconds,
	})
	if err != nil {
		if delErr := h.storage.DeleteObject(context.WithoutCancel(ctx), key); delErr != nil {
			zerolog.Ctx(ctx).Error().Err(delErr).Str("s3_key", key).Msg("failed to remove orphaned upload")
		}
		return err
	}

	h.audit.Record(c, audit.Entry{
		Action:      audit.ActionUploadFile,
		Description: "Uploaded " + fileName,
		EntityType:  audit.EntityCourseFile,
		EntityID:    audit.IntPtr(created.ID),
		NewValues:   map[string]any{"course_id": courseID, "file_name": fileName, "file_type": created.FileType},
	})

	return c.JSON(http.StatusCreated, toCourseFileResponse(created))
}

func (h *CourseFileHandler) List(c echo.Context) error {
	courseID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	files, err := h.files.ListByCourse(c.Request().Context(), courseID)
	if err != nil {
		return err
	}

	out := make([]CourseFileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, toCourseFileResponse(f))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CourseFileHandler) ListPDFs(c echo.Context) error {
	courseID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	pdfs, err := h.files.ListPublishedPDFs(c.Request().Context(), courseID)
	if err != nil {
		return err
	}

	items := make([]PDFItem, 0, len(pdfs))
	for _, p := range pdfs {
		items = append(items, PDFItem{
			ID:          p.ID,
			FileName:    p.FileName,
			FileTitle:   p.FileTitle,
			Description: p.FileDescription,
			FileURL:     p.FileURL,
			UploadedAt:  p.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, PDFListResponse{
		CourseID:  courseID,
		TotalPDFs: len(items),
		Files:     items,
	})
}

// Stream redirects to a short-lived signed URL for the PDF instead of proxying bytes.
func (h *CourseFileHandler) Stream(c echo.Context) error {
	fileID, err := pathID(c, paramFileID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	pdf, err := h.files.GetPDF(ctx, fileID)
	if err != nil {
		return err
	}

	// Rows uploaded before keys were recorded only have the public URL.
	if pdf.S3Key == "" {
		return c.Redirect(http.StatusTemporaryRedirect, pdf.FileURL)
	}

	if h.storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, msgStorageNotConfigured)
	}

	cacheKey := streamCacheKeyPrefix + strconv.Itoa(pdf.ID)
	if h.urls != nil {
		if signed, ok := h.urls.Get(cacheKey); ok {
			return c.Redirect(http.StatusTemporaryRedirect, signed)
		}
	}

	signed, err := h.storage.PresignGet(ctx, pdf.S3Key)
	if err != nil {
		return apperrors.InternalServer(msgPresignFailed, err)
	}
	if h.urls != nil {
		h.urls.Set(cacheKey, signed, h.storage.PresignExpiry())
	}

	return c.Redirect(http.StatusTemporaryRedirect, signed)
}
