package student

import (
	"fmt"
	"time"
)

const (
	StatusActive = "ACTIVE"

	uniqueIDFmt = "STU-%d-%s"
)

// UniqueID builds the college-scoped public student identifier.
func UniqueID(collegeID int, rollNumber string) string {
	return fmt.Sprintf(uniqueIDFmt, collegeID, rollNumber)
}

type Student struct {
	ID               int
	UserID           int
	CollegeID        int
	BranchID         int
	AcademicYearID   int
	RollNumber       string
	StudentUniqueID  string
	EnrollmentStatus string
	CreatedAt        time.Time
}

type CreateStudentInput struct {
	CollegeID      int
	Name           string
	Email          string
	Phone          string
	RollNumber     string
	AcademicYearID int
	BranchID       int
	PasswordHash   string
}

// Summary is the row shape shared by list, filter and search.
type Summary struct {
	StudentID            int
	Name                 string
	Email                string
	RollNumber           *string
	Branch               string
	AcademicYear         string
	Status               string
	CompletionPercentage float64
}

type Filter struct {
	BranchID       *int
	AcademicYearID *int
	MinCompletion  *float64
	MaxCompletion  *float64
}

type Progress struct {
	Rank       int
	StudentID  int
	Name       string
	Email      string
	Department string
	Year       *int
	AvgScore   float64
	Progress   float64
}

// BulkFailure reports a spreadsheet row that could not be imported. Row is 1-based
// and accounts for the header line.
type BulkFailure struct {
	Row    int    `json:"row"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

type BulkResult struct {
	TotalRecords        int
	SuccessfullyCreated int
	Failed              []BulkFailure
}
