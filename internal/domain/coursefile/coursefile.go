package coursefile

import (
	"strings"
	"time"
)

type FileType string

const (
	TypePDF      FileType = "PDF"
	TypeVideo    FileType = "VIDEO"
	TypeDocument FileType = "DOCUMENT"

	mimePDF         = "application/pdf"
	mimeVideoPrefix = "video/"
)

// TypeFromMIME classifies an uploaded file by its declared content type.
func TypeFromMIME(contentType string) FileType {
	switch {
	case contentType == mimePDF:
		return TypePDF
	case strings.HasPrefix(contentType, mimeVideoPrefix):
		return TypeVideo
	default:
		return TypeDocument
	}
}

type CourseFile struct {
	ID              int
	CourseID        int
	FileName        string
	FileTitle       *string
	FileDescription *string
	FileType        FileType
	FileSize        *int64
	MimeType        *string
	FileURL         string
	S3Key           string
	DurationSeconds *int
	IsPublished     bool
	DownloadAllowed bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CreateCourseFileInput struct {
	CourseID        int
	FileName        string
	FileTitle       string
	FileDescription *string
	FileType        FileType
	FileSize        int64
	MimeType        string
	FileURL         string
	S3Key           string
	DurationSeconds *int
}
