package handler

import (
	"time"

	"github.com/cherrycherry3/crt-backend/internal/domain/college"
	"github.com/cherrycherry3/crt-backend/internal/domain/course"
	"github.com/cherrycherry3/crt-backend/internal/domain/coursefile"
	"github.com/cherrycherry3/crt-backend/internal/domain/dashboard"
	"github.com/cherrycherry3/crt-backend/internal/domain/enrollment"
	"github.com/cherrycherry3/crt-backend/internal/domain/student"
	"github.com/labstack/echo/v4"
)

func respondMessage(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{jsonKeyMessage: message})
}

type CollegeResponse struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Code            *string   `json:"code"`
	Description     *string   `json:"description"`
	Email           *string   `json:"email"`
	Phone           *string   `json:"phone"`
	Website         *string   `json:"website"`
	City            *string   `json:"city"`
	State           *string   `json:"state"`
	Country         *string   `json:"country"`
	EstablishedYear *int      `json:"established_year"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

func toCollegeResponse(c *college.College) CollegeResponse {
	return CollegeResponse{
		ID:              c.ID,
		Name:            c.Name,
		Code:            c.Code,
		Description:     c.Description,
		Email:           c.Email,
		Phone:           c.Phone,
		Website:         c.Website,
		City:            c.City,
		State:           c.State,
		Country:         c.Country,
		EstablishedYear: c.EstablishedYear,
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
	}
}

type CourseResponse struct {
	ID                     int          `json:"id"`
	Title                  string       `json:"title"`
	Description            *string      `json:"description"`
	CourseCode             *string      `json:"course_code"`
	Category               *string      `json:"category"`
	Level                  course.Level `json:"level"`
	DurationHours          *int         `json:"duration_hours"`
	ExpectedCompletionDays *int         `json:"expected_completion_days"`
	ThumbnailURL           *string      `json:"thumbnail_url"`
	TeacherID              *int         `json:"teacher_id"`
	IsActive               bool         `json:"is_active"`
	IsPublished            bool         `json:"is_published"`
	CreatedAt              time.Time    `json:"created_at"`
}

func toCourseResponse(c *course.Course) CourseResponse {
	return CourseResponse{
		ID:                     c.ID,
		Title:                  c.Title,
		Description:            c.Description,
		CourseCode:             c.CourseCode,
		Category:               c.Category,
		Level:                  c.Level,
		DurationHours:          c.DurationHours,
		ExpectedCompletionDays: c.ExpectedCompletionDays,
		ThumbnailURL:           c.ThumbnailURL,
		TeacherID:              c.TeacherID,
		IsActive:               c.IsActive,
		IsPublished:            c.IsPublished,
		CreatedAt:              c.CreatedAt,
	}
}

type CourseFileResponse struct {
	ID              int                 `json:"id"`
	CourseID        int                 `json:"course_id"`
	FileName        string              `json:"file_name"`
	FileTitle       *string             `json:"file_title"`
	FileDescription *string             `json:"file_description"`
	FileType        coursefile.FileType `json:"file_type"`
	FileSize        *int64              `json:"file_size"`
	MimeType        *string             `json:"mime_type"`
	FileURL         string              `json:"file_url"`
	DurationSeconds *int                `json:"duration_seconds"`
	CreatedAt       time.Time           `json:"created_at"`
}

func toCourseFileResponse(f *coursefile.CourseFile) CourseFileResponse {
	return CourseFileResponse{
		ID:              f.ID,
		CourseID:        f.CourseID,
		FileName:        f.FileName,
		FileTitle:       f.FileTitle,
		FileDescription: f.FileDescription,
		FileType:        f.FileType,
		FileSize:        f.FileSize,
		MimeType:        f.MimeType,
		FileURL:         f.FileURL,
		DurationSeconds: f.DurationSeconds,
		CreatedAt:       f.CreatedAt,
	}
}

type PDFItem struct {
	ID          int       `json:"id"`
	FileName    string    `json:"file_name"`
	FileTitle   *string   `json:"file_title"`
	Description *string   `json:"description"`
	FileURL     string    `json:"file_url"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type PDFListResponse struct {
	CourseID  int       `json:"course_id"`
	TotalPDFs int       `json:"total_pdfs"`
	Files     []PDFItem `json:"files"`
}

type StudentSummaryResponse struct {
	StudentID            int     `json:"student_id"`
	Name                 string  `json:"name"`
	Email                string  `json:"email"`
	RollNo               *string `json:"roll_no"`
	Branch               string  `json:"branch"`
	AcademicYear         string  `json:"academic_year"`
	Status               string  `json:"status"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

func toStudentSummaries(rows []*student.Summary) []StudentSummaryResponse {
	out := make([]StudentSummaryResponse, 0, len(rows))
	for _, s := range rows {
		out = append(out, StudentSummaryResponse{
			StudentID:            s.StudentID,
			Name:                 s.Name,
			Email:                s.Email,
			RollNo:               s.RollNumber,
			Branch:               s.Branch,
			AcademicYear:         s.AcademicYear,
			Status:               s.Status,
			CompletionPercentage: dashboard.Round2(s.CompletionPercentage),
		})
	}
	return out
}

type StudentProgressResponse struct {
	Rank       int     `json:"rank"`
	StudentID  int     `json:"student_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department string  `json:"department"`
	Year       *int    `json:"year"`
	AvgScore   float64 `json:"avg_score"`
	Progress   float64 `json:"progress"`
}

func toStudentProgress(rows []*student.Progress) []StudentProgressResponse {
	out := make([]StudentProgressResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, StudentProgressResponse{
			Rank:       p.Rank,
			StudentID:  p.StudentID,
			Name:       p.Name,
			Email:      p.Email,
			Department: p.Department,
			Year:       p.Year,
			AvgScore:   dashboard.Round2(p.AvgScore),
			Progress:   dashboard.Round2(p.Progress),
		})
	}
	return out
}

type CreatedStudentResponse struct {
	StudentID int    `json:"student_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	RollNo    string `json:"roll_no"`
	Status    string `json:"status"`
}

type BulkUploadResponse struct {
	Message             string                `json:"message"`
	TotalRecords        int                   `json:"total_records"`
	SuccessfullyCreated int                   `json:"successfully_created"`
	FailedRecords       []student.BulkFailure `json:"failed_records"`
}

type AssignResponse struct {
	CourseID         int `json:"course_id"`
	BranchID         int `json:"branch_id"`
	AcademicYearID   int `json:"academic_year_id"`
	StudentsAssigned int `json:"students_assigned"`
}

type CollegeCourseResponse struct {
	CourseID          int          `json:"course_id"`
	CourseTitle       string       `json:"course_title"`
	Category          *string      `json:"category"`
	Level             course.Level `json:"level"`
	StudentsAssigned  int          `json:"students_assigned"`
	StudentsCompleted int          `json:"students_completed"`
}

type AvailableCourse struct {
	CourseID               int          `json:"course_id"`
	Title                  string       `json:"title"`
	Category               *string      `json:"category"`
	Level                  course.Level `json:"level"`
	Description            *string      `json:"description"`
	ThumbnailURL           *string      `json:"thumbnail_url"`
	DurationHours          *int         `json:"duration_hours"`
	ExpectedCompletionDays *int         `json:"expected_completion_days"`
	CreatedAt              time.Time    `json:"created_at"`
}

type AvailableCoursesResponse struct {
	CollegeID    int               `json:"college_id"`
	TotalCourses int               `json:"total_courses"`
	Courses      []AvailableCourse `json:"courses"`
}

type StudentCourseResponse struct {
	CourseID           int               `json:"course_id"`
	CourseTitle        string            `json:"course_title"`
	Category           *string           `json:"category"`
	Level              string            `json:"level"`
	EnrollmentStatus   enrollment.Status `json:"enrollment_status"`
	ProgressPercentage float64           `json:"progress_percentage"`
	CourseScore        *float64          `json:"course_score"`
	LastAccessedAt     *time.Time        `json:"last_accessed_at"`
}

type ProgressResponse struct {
	CourseID           int               `json:"course_id"`
	EnrollmentStatus   enrollment.Status `json:"enrollment_status"`
	ProgressPercentage float64           `json:"progress_percentage"`
	CompletionDate     *time.Time        `json:"completion_date"`
	LastAccessedAt     *time.Time        `json:"last_accessed_at"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

