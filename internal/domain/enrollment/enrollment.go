package enrollment

import "time"

type Status string

const (
	StatusAssigned   Status = "ASSIGNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"

	MinProgress = 0
	MaxProgress = 100
)

// StatusForProgress returns the status a progress update moves an enrollment to.
// ok is false when the current status should be kept.
func StatusForProgress(progress float64) (Status, bool) {
	switch {
	case progress >= MaxProgress:
		return StatusCompleted, true
	case progress > MinProgress:
		return StatusInProgress, true
	default:
		return "", false
	}
}

type Enrollment struct {
	ID                 int
	StudentID          int
	CourseID           int
	Status             Status
	ProgressPercentage float64
	CompletionDate     *time.Time
	LastAccessedAt     *time.Time
	CourseScore        *float64
}

// StudentCourse joins an enrollment with its course for student views.
type StudentCourse struct {
	CourseID           int
	CourseTitle        string
	Category           *string
	Level              string
	Status             Status
	ProgressPercentage float64
	CourseScore        *float64
	LastAccessedAt     *time.Time
}

type AssignInput struct {
	CollegeID      int
	CourseID       int
	BranchID       int
	AcademicYearID int
}

type ProgressUpdate struct {
	StudentID          int
	CourseID           int
	ProgressPercentage float64
	At                 time.Time
}
