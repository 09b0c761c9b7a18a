package course

import (
	"fmt"
	"time"
)

type Level string

const (
	LevelBeginner     Level = "BEGINNER"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelAdvanced     Level = "ADVANCED"

	errInvalidLevelFmt = "invalid level: %s"
)

func (l Level) Validate() error {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return nil
	default:
		return fmt.Errorf(errInvalidLevelFmt, l)
	}
}

type Course struct {
	ID                     int
	TeacherID              *int
	Title                  string
	Description            *string
	CourseCode             *string
	Category               *string
	Level                  Level
	DurationHours          *int
	ExpectedCompletionDays *int
	ThumbnailURL           *string
	IsActive               bool
	IsPublished            bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

type CreateCourseInput struct {
	Title                  string
	Description            *string
	CourseCode             string
	Category               *string
	Level                  Level
	DurationHours          *int
	ExpectedCompletionDays *int
	ThumbnailURL           *string
	TeacherID              *int
}

type UpdateCourseInput struct {
	Title                  *string
	Description            *string
	CourseCode             *string
	Category               *string
	Level                  *Level
	DurationHours          *int
	ExpectedCompletionDays *int
	ThumbnailURL           *string
	TeacherID              *int
	IsActive               *bool
	IsPublished            *bool
}

// CollegeCourse is a course allocated to a college with enrollment counters.
type CollegeCourse struct {
	CourseID          int
	Title             string
	Category          *string
	Level             Level
	StudentsAssigned  int
	StudentsCompleted int
}
