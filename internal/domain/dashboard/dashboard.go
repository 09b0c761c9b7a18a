package dashboard

import (
	"math"
	"time"

	"github.com/cherrycherry3/crt-backend/internal/domain/enrollment"
)

// Dashboards are serialized as-is to clients and to the cache, so they carry json tags.

type AdminOverview struct {
	TotalColleges int     `json:"total_colleges"`
	TotalStudents int     `json:"total_students"`
	AvgCompletion float64 `json:"avg_completion"`
	AvgScore      float64 `json:"avg_score"`
}

type CollegeRanking struct {
	Rank       int     `json:"rank"`
	College    string  `json:"college"`
	Completion float64 `json:"completion"`
	Points     float64 `json:"points"`
}

type CourseAdoption struct {
	Course          string `json:"course"`
	AdoptionPercent int    `json:"adoption_percent"`
	AdoptedBy       string `json:"adopted_by"`
}

type Admin struct {
	Overview       AdminOverview    `json:"overview"`
	Rankings       []CollegeRanking `json:"rankings"`
	CourseAdoption []CourseAdoption `json:"course_adoption"`
}

type CollegeInfo struct {
	CollegeID       int     `json:"college_id"`
	CollegeName     string  `json:"college_name"`
	City            *string `json:"city"`
	EstablishedYear *int    `json:"established_year"`
	TotalStudents   int     `json:"total_students"`
	TotalBranches   int     `json:"total_branches"`
	TotalCourses    int     `json:"total_courses"`
}

type AcademicYearSummary struct {
	AcademicYearID int    `json:"academic_year_id"`
	YearName       string `json:"year_name"`
	StudentsCount  int    `json:"students_count"`
}

type BranchSummary struct {
	BranchID                int     `json:"branch_id"`
	BranchName              string  `json:"branch_name"`
	BranchCode              *string `json:"branch_code"`
	TotalStudents           int     `json:"total_students"`
	AverageCRTScore         float64 `json:"average_crt_score"`
	AverageCourseCompletion float64 `json:"average_course_completion"`
}

type CourseAllocation struct {
	CourseID           int     `json:"course_id"`
	CourseTitle        string  `json:"course_title"`
	Category           *string `json:"category"`
	Level              string  `json:"level"`
	StudentsAssigned   int     `json:"students_assigned"`
	StudentsCompleted  int     `json:"students_completed"`
	AverageCourseScore float64 `json:"average_course_score"`
}

type TopStudent struct {
	StudentID    int     `json:"student_id"`
	StudentName  string  `json:"student_name"`
	Branch       string  `json:"branch"`
	AcademicYear string  `json:"academic_year"`
	CRTScore     float64 `json:"crt_score"`
	CollegeRank  int     `json:"college_rank"`
}

type StudentOverview struct {
	StudentID                  int     `json:"student_id"`
	Name                       string  `json:"name"`
	Email                      string  `json:"email"`
	RollNo                     *string `json:"roll_no"`
	Department                 string  `json:"department"`
	AcademicYear               string  `json:"academic_year"`
	CoursesAssigned            int     `json:"courses_assigned"`
	CoursesCompleted           int     `json:"courses_completed"`
	CourseCompletionPercentage float64 `json:"course_completion_percentage"`
}

type PerformanceSummary struct {
	AverageCRTScore        float64 `json:"average_crt_score"`
	HighestCRTScore        float64 `json:"highest_crt_score"`
	LowestCRTScore         float64 `json:"lowest_crt_score"`
	StudentsAbove70Percent int     `json:"students_above_70_percent"`
	StudentsBelow40Percent int     `json:"students_below_40_percent"`
}

type College struct {
	CollegeInfo        CollegeInfo           `json:"college_info"`
	AcademicYears      []AcademicYearSummary `json:"academic_years"`
	Branches           []BranchSummary       `json:"branches"`
	CoursesAllocated   []CourseAllocation    `json:"courses_allocated"`
	TopStudents        []TopStudent          `json:"top_students"`
	StudentsOverview   []StudentOverview     `json:"students_overview"`
	PerformanceSummary PerformanceSummary    `json:"performance_summary"`
}

type StudentInfo struct {
	StudentID       int     `json:"student_id"`
	StudentName     string  `json:"student_name"`
	College         string  `json:"college"`
	Branch          string  `json:"branch"`
	AcademicYear    string  `json:"academic_year"`
	RollNumber      *string `json:"roll_number"`
	StudentUniqueID string  `json:"student_unique_id"`
}

type CourseSummary struct {
	TotalCoursesAssigned  int `json:"total_courses_assigned"`
	TotalCoursesCompleted int `json:"total_courses_completed"`
}

type AssignedCourse struct {
	CourseID           int               `json:"course_id"`
	CourseTitle        string            `json:"course_title"`
	Category           *string           `json:"category"`
	Level              string            `json:"level"`
	EnrollmentStatus   enrollment.Status `json:"enrollment_status"`
	ProgressPercentage float64           `json:"progress_percentage"`
	CourseScore        *float64          `json:"course_score"`
	LastAccessedAt     *time.Time        `json:"last_accessed_at,omitempty"`
}

type TestsSummary struct {
	TestsAttempted int `json:"tests_attempted"`
	TestsPassed    int `json:"tests_passed"`
}

type StudentPerformance struct {
	TotalCRTScore     float64 `json:"total_crt_score"`
	AverageTestScore  float64 `json:"average_test_score"`
	OverallPercentage float64 `json:"overall_percentage"`
}

type Student struct {
	StudentInfo        StudentInfo        `json:"student_info"`
	CourseSummary      CourseSummary      `json:"course_summary"`
	AssignedCourses    []AssignedCourse   `json:"assigned_courses"`
	TestsSummary       TestsSummary       `json:"tests_summary"`
	PerformanceSummary StudentPerformance `json:"performance_summary"`
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percent returns part/whole*100, or 0 when whole is zero.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
