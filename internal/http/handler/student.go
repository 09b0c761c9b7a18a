package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cherrycherry3/crt-backend/internal/audit"
	"github.com/cherrycherry3/crt-backend/internal/domain/enrollment"
	"github.com/cherrycherry3/crt-backend/internal/domain/student"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/cherrycherry3/crt-backend/pkg/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	minStudentPasswordLen = 6
	// studentEmailRules matches the email tag on CreateStudentRequest so
	// uploaded rows and single creates accept the same addresses.
	studentEmailRules = "required,email,max=150"
)

var rowValidator = validator.New()

// CollegeStudentHandler serves the college admin's student roster, scoped to
// the college the caller administers.
type CollegeStudentHandler struct {
	students StudentRepository
	hasher   PasswordHasher
	audit    Auditor
	cache    CacheInvalidator
}

func NewCollegeStudentHandler(students StudentRepository, hasher PasswordHasher, auditor Auditor, cache CacheInvalidator) *CollegeStudentHandler {
	return &CollegeStudentHandler{
		students: students,
		hasher:   hasher,
		audit:    auditor,
		cache:    cache,
	}
}

type CreateStudentRequest struct {
	Name           string `json:"name" validate:"required,max=200"`
	Email          string `json:"email" validate:"required,email,max=150"`
	RollNumber     string `json:"roll_number" validate:"required,max=50"`
	Phone          string `json:"phone" validate:"omitempty,max=20"`
	AcademicYearID int    `json:"academic_year_id" validate:"required,gt=0"`
	BranchID       int    `json:"branch_id" validate:"required,gt=0"`
	Password       string `json:"password" validate:"required,min=6"`
}

func (h *CollegeStudentHandler) List(c echo.Context) error {
	collegeID, err := collegeScope(c, h.students)
	if err != nil {
		return err
	}

	rows, err := h.students.List(c.Request().Context(), collegeID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentSummaries(rows))
}

func (h *CollegeStudentHandler) Filter(c echo.Context) error {
	var f student.Filter
	var err error

	if f.BranchID, err = optionalIntQuery(c, queryDepartmentID); err != nil {
		return err
	}
	if f.AcademicYearID, err = optionalIntQuery(c, queryAcademicYearID); err != nil {
		return err
	}
	if f.MinCompletion, err = optionalFloatQuery(c, queryMinCompletion); err != nil {
		return err
	}
	if f.MaxCompletion, err = optionalFloatQuery(c, queryMaxCompletion); err != nil {
		return err
	}
	for _, bound := range []*float64{f.MinCompletion, f.MaxCompletion} {
		if bound != nil && (*bound < enrollment.MinProgress || *bound > enrollment.MaxProgress) {
			return apperrors.Validation(msgCompletionRange)
		}
	}

	collegeID, err := collegeScope(c, h.students)
	if err != nil {
		return err
	}

	rows, err := h.students.Filter(c.Request().Context(), collegeID, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentSummaries(rows))
}

func (h *CollegeStudentHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam(querySearch))
	if q == "" {
		return apperrors.Validation(msgSearchQueryRequired)
	}

	collegeID, err := collegeScope(c, h.students)
	if err != nil {
		return err
	}

	rows, err := h.students.Search(c.Request().Context(), collegeID, q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentSummaries(rows))
}

func (h *CollegeStudentHandler) Progress(c echo.Context) error {
	collegeID, err := collegeScope(c, h.students)
	if err != nil {
		return err
	}

	rows, err := h.students.Progress(c.Request().Context(), collegeID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStudentProgress(rows))
}

func (h *CollegeStudentHandler) Create(c echo.Context) error {
	var req CreateStudentRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	collegeID, err := collegeScope(c, h.students)
	if err != nil {
		return err
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return apperrors.InternalServer(msgPasswordProcessFail, err)
	}

	input := student.CreateStudentInput{
		CollegeID:      collegeID,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          strings.TrimSpace(req.Phone),
		RollNumber:     strings.TrimSpace(req.RollNumber),
		AcademicYearID: req.AcademicYearID,
		BranchID:       req.BranchID,
		PasswordHash:   hash,
	}

	created, err := h.students.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}

	h.audit.Record(c, audit.Entry{
		Action:      audit.ActionCreateStudent,
		Description: "Created student " + input.Name,
		EntityType:  audit.EntityStudent,
		EntityID:    audit.IntPtr(created.ID),
		NewValues:   map[string]any{"email": input.Email, "roll_number": input.RollNumber, "college_id": collegeID},
	})
	invalidate(c, h.cache)

	return c.JSON(http.StatusCreated, CreatedStudentResponse{
		StudentID: created.ID,
		Name:      input.Name,
		Email:     input.Email,
		RollNo:    created.RollNumber,
		Status:    created.EnrollmentStatus,
	})
}

// BulkUpload imports a CSV or XLSX roster. Each row is created in its own
// transaction so one bad row never discards the others.
func (h *CollegeStudentHandler) BulkUpload(c echo.Context) error {
	header, err := c.FormFile(formFieldFile)
	if err != nil {
		return apperrors.Validation(msgFileRequired)
	}
	if !isSupportedBulkFile(header.Filename) {
		return apperrors.BadRequest(msgUnsupportedBulkFile)
	}

	collegeID, err := collegeScope(c, h.students)
	if err != nil {
		return err
	}

	src, err := header.Open()
	if err != nil {
		return apperrors.BadRequest(msgUnreadableBulkFile)
	}
	defer src.Close()

	rows, err := readBulkRows(header.Filename, src)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	result := student.BulkResult{TotalRecords: len(rows), Failed: make([]student.BulkFailure, 0)}
	for _, row := range rows {
		if reason := h.importRow(ctx, collegeID, row); reason != "" {
			result.Failed = append(result.Failed, student.BulkFailure{
				Row:    row.Line,
				Email:  row.get(colEmail),
				Reason: reason,
			})
			continue
		}
		result.SuccessfullyCreated++
	}

	h.audit.Record(c, audit.Entry{
		Action:      audit.ActionBulkUpload,
		Description: "Bulk uploaded students from " + header.Filename,
		EntityType:  audit.EntityStudent,
		NewValues: map[string]any{
			"college_id":           collegeID,
			"total_records":        result.TotalRecords,
			"successfully_created": result.SuccessfullyCreated,
			"failed":               len(result.Failed),
		},
	})
	if result.SuccessfullyCreated > 0 {
		invalidate(c, h.cache)
	}

	return c.JSON(http.StatusCreated, BulkUploadResponse{
		Message:             msgBulkCompleted,
		TotalRecords:        result.TotalRecords,
		SuccessfullyCreated: result.SuccessfullyCreated,
		FailedRecords:       result.Failed,
	})
}

// importRow returns an empty string on success or the reason the row was rejected.
func (h *CollegeStudentHandler) importRow(ctx context.Context, collegeID int, row bulkRow) string {
	for _, col := range []string{colName, colEmail, colRollNumber, colPassword} {
		if row.get(col) == "" {
			return fmt.Sprintf(msgRowFieldRequired, col)
		}
	}

	email := strings.ToLower(row.get(colEmail))
	if err := rowValidator.Var(colEmail, email, studentEmailRules); err != nil {
		return msgRowInvalidEmail
	}

	plain := row.get(colPassword)
	if len(plain) < minStudentPasswordLen {
		return msgRowPasswordLength
	}

	yearID, err := row.intValue(colAcademicYearID)
	if err != nil {
		return err.Error()
	}
	branchID, err := row.intValue(colBranchID)
	if err != nil {
		return err.Error()
	}

	hash, err := h.hasher.Hash(plain)
	if err != nil {
		return msgPasswordProcessFail
	}

	_, err = h.students.Create(ctx, student.CreateStudentInput{
		CollegeID:      collegeID,
		Name:           row.get(colName),
		Email:          email,
		Phone:          row.get(colPhone),
		RollNumber:     row.get(colRollNumber),
		AcademicYearID: yearID,
		BranchID:       branchID,
		PasswordHash:   hash,
	})
	if err == nil {
		return ""
	}

	if msg, ok := apperrors.Message(err); ok && !errors.Is(err, apperrors.ErrInternalServer) {
		return msg
	}
	zerolog.Ctx(ctx).Error().Err(err).Int("row", row.Line).Msg("bulk student import failed")
	return msgStudentCreateFailed
}
