package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/cherrycherry3/crt-backend/internal/domain/dashboard"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/jackc/pgx/v5"
)

const adoptedByFmt = "%d of %d colleges"

// DashboardRepository runs the aggregate queries behind the three dashboards. Each
// dashboard is loaded with a single pgx.Batch round trip.
type DashboardRepository struct {
	db *DB
}

func NewDashboardRepository(db *DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) Admin(ctx context.Context) (*dashboard.Admin, error) {
	batch := &pgx.Batch{}
	batch.Queue(`
		SELECT (SELECT COUNT(*) FROM colleges),
		       (SELECT COUNT(*) FROM students),
		       (SELECT COALESCE(AVG(progress_percentage), 0) FROM student_courses),
		       (SELECT COALESCE(AVG(course_score), 0) FROM student_courses)`)
	batch.Queue(`
		SELECT c.name,
		       COALESCE(AVG(sc.progress_percentage), 0) AS completion,
		       COALESCE(AVG(sc.course_score), 0) AS points
		FROM colleges c
		JOIN students s ON s.college_id = c.id
		JOIN student_courses sc ON sc.student_id = s.id
		GROUP BY c.id, c.name
		ORDER BY AVG(sc.course_score) DESC NULLS LAST, c.id`)
	batch.Queue(`
		SELECT co.title, COUNT(DISTINCT c.id)
		FROM courses co
		JOIN student_courses sc ON sc.course_id = co.id
		JOIN students s ON s.id = sc.student_id
		JOIN colleges c ON c.id = s.college_id
		GROUP BY co.id, co.title
		ORDER BY co.id`)

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	d := &dashboard.Admin{
		Rankings:       make([]dashboard.CollegeRanking, 0),
		CourseAdoption: make([]dashboard.CourseAdoption, 0),
	}

	var avgCompletion, avgScore float64
	if err := br.QueryRow().Scan(&d.Overview.TotalColleges, &d.Overview.TotalStudents, &avgCompletion, &avgScore); err != nil {
		return nil, errFailedLoadDashboard("admin", err)
	}
	d.Overview.AvgCompletion = dashboard.Round2(avgCompletion)
	d.Overview.AvgScore = dashboard.Round2(avgScore)

	err := forEachRow(br, func(rows pgx.Rows) error {
		var row dashboard.CollegeRanking
		if err := rows.Scan(&row.College, &row.Completion, &row.Points); err != nil {
			return err
		}
		row.Rank = len(d.Rankings) + 1
		row.Completion = dashboard.Round2(row.Completion)
		row.Points = dashboard.Round2(row.Points)
		d.Rankings = append(d.Rankings, row)
		return nil
	})
	if err != nil {
		return nil, errFailedLoadDashboard("admin", err)
	}

	total := d.Overview.TotalColleges
	err = forEachRow(br, func(rows pgx.Rows) error {
		var title string
		var colleges int
		if err := rows.Scan(&title, &colleges); err != nil {
			return err
		}
		d.CourseAdoption = append(d.CourseAdoption, dashboard.CourseAdoption{
			Course:          title,
			AdoptionPercent: int(math.Round(dashboard.Percent(colleges, total))),
			AdoptedBy:       fmt.Sprintf(adoptedByFmt, colleges, total),
		})
		return nil
	})
	if err != nil {
		return nil, errFailedLoadDashboard("admin", err)
	}

	return d, nil
}

func (r *DashboardRepository) College(ctx context.Context, collegeID int) (*dashboard.College, error) {
	batch := &pgx.Batch{}
	batch.Queue(`
		SELECT c.id, c.name, c.city, c.established_year,
		       (SELECT COUNT(*) FROM students WHERE college_id = c.id),
		       (SELECT COUNT(*) FROM college_branches WHERE college_id = c.id),
		       (SELECT COUNT(*) FROM college_courses WHERE college_id = c.id AND is_active = TRUE)
		FROM colleges c
		WHERE c.id = $1`, collegeID)
	batch.Queue(`
		SELECT ay.id, ay.year_name, COUNT(s.id)
		FROM academic_years ay
		LEFT JOIN students s ON s.academic_year_id = ay.id
		WHERE ay.college_id = $1
		GROUP BY ay.id, ay.year_name
		ORDER BY ay.id`, collegeID)
	batch.Queue(`
		SELECT b.id, b.branch_name, b.branch_code,
		       (SELECT COUNT(*) FROM students s WHERE s.branch_id = b.id),
		       (SELECT COALESCE(AVG(ss.total_crt_score), 0)
		          FROM student_scores ss JOIN students s ON s.id = ss.student_id
		         WHERE s.branch_id = b.id),
		       (SELECT COUNT(*) FROM student_courses sc JOIN students s ON s.id = sc.student_id
		         WHERE s.branch_id = b.id),
		       (SELECT COUNT(*) FROM student_courses sc JOIN students s ON s.id = sc.student_id
		         WHERE s.branch_id = b.id AND sc.enrollment_status = $2)
		FROM college_branches b
		WHERE b.college_id = $1
		ORDER BY b.id`, collegeID, enrollmentCompleted)
	batch.Queue(`
		SELECT co.id, co.title, co.category, co.level,
		       COUNT(sc.id),
		       COUNT(sc.id) FILTER (WHERE sc.enrollment_status = $2),
		       COALESCE(AVG(sc.course_score), 0)
		FROM college_courses cc
		JOIN courses co ON co.id = cc.course_id
		LEFT JOIN students s ON s.college_id = cc.college_id
		LEFT JOIN student_courses sc ON sc.course_id = co.id AND sc.student_id = s.id
		WHERE cc.college_id = $1 AND cc.is_active = TRUE
		GROUP BY co.id, co.title, co.category, co.level
		ORDER BY co.id`, collegeID, enrollmentCompleted)
	batch.Queue(`
		SELECT s.id, u.full_name, b.branch_name, ay.year_name, rk.score_at_ranking, rk.rank_position
		FROM rankings rk
		JOIN students s ON s.id = rk.student_id
		JOIN users u ON u.id = s.user_id
		JOIN college_branches b ON b.id = s.branch_id
		JOIN academic_years ay ON ay.id = s.academic_year_id
		WHERE rk.college_id = $1 AND rk.ranking_type = $2
		ORDER BY rk.rank_position
		LIMIT $3`, collegeID, rankingCollegeOverall, topStudentsLimit)
	batch.Queue(`
		SELECT s.id, u.full_name, u.email, s.roll_number, b.branch_name, ay.year_name,
		       COUNT(sc.id),
		       COUNT(sc.id) FILTER (WHERE sc.enrollment_status = $2)
		FROM students s
		JOIN users u ON u.id = s.user_id
		JOIN college_branches b ON b.id = s.branch_id
		JOIN academic_years ay ON ay.id = s.academic_year_id
		LEFT JOIN student_courses sc ON sc.student_id = s.id
		WHERE s.college_id = $1
		GROUP BY s.id, u.full_name, u.email, s.roll_number, b.branch_name, ay.year_name
		ORDER BY u.full_name, s.id`, collegeID, enrollmentCompleted)
	batch.Queue(`
		SELECT COALESCE(AVG(ss.total_crt_score), 0),
		       COALESCE(MAX(ss.total_crt_score), 0),
		       COALESCE(MIN(ss.total_crt_score), 0),
		       COUNT(*) FILTER (WHERE ss.total_crt_score >= $2),
		       COUNT(*) FILTER (WHERE ss.total_crt_score < $3)
		FROM student_scores ss
		JOIN students s ON s.id = ss.student_id
		WHERE s.college_id = $1`, collegeID, highScoreThreshold, lowScoreThreshold)

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	d := &dashboard.College{
		AcademicYears:    make([]dashboard.AcademicYearSummary, 0),
		Branches:         make([]dashboard.BranchSummary, 0),
		CoursesAllocated: make([]dashboard.CourseAllocation, 0),
		TopStudents:      make([]dashboard.TopStudent, 0),
		StudentsOverview: make([]dashboard.StudentOverview, 0),
	}

	info := &d.CollegeInfo
	err := br.QueryRow().Scan(
		&info.CollegeID, &info.CollegeName, &info.City, &info.EstablishedYear,
		&info.TotalStudents, &info.TotalBranches, &info.TotalCourses,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errCollegeNotFound)
		}
		return nil, errFailedLoadDashboard("college", err)
	}

	steps := []func(pgx.Rows) error{
		func(rows pgx.Rows) error {
			var y dashboard.AcademicYearSummary
			if err := rows.Scan(&y.AcademicYearID, &y.YearName, &y.StudentsCount); err != nil {
				return err
			}
			d.AcademicYears = append(d.AcademicYears, y)
			return nil
		},
		func(rows pgx.Rows) error {
			var b dashboard.BranchSummary
			var avgScore float64
			var enrollments, completed int
			if err := rows.Scan(&b.BranchID, &b.BranchName, &b.BranchCode, &b.TotalStudents, &avgScore, &enrollments, &completed); err != nil {
				return err
			}
			b.AverageCRTScore = dashboard.Round2(avgScore)
			b.AverageCourseCompletion = dashboard.Round2(dashboard.Percent(completed, enrollments))
			d.Branches = append(d.Branches, b)
			return nil
		},
		func(rows pgx.Rows) error {
			var c dashboard.CourseAllocation
			if err := rows.Scan(&c.CourseID, &c.CourseTitle, &c.Category, &c.Level, &c.StudentsAssigned, &c.StudentsCompleted, &c.AverageCourseScore); err != nil {
				return err
			}
			c.AverageCourseScore = dashboard.Round2(c.AverageCourseScore)
			d.CoursesAllocated = append(d.CoursesAllocated, c)
			return nil
		},
		func(rows pgx.Rows) error {
			var t dashboard.TopStudent
			if err := rows.Scan(&t.StudentID, &t.StudentName, &t.Branch, &t.AcademicYear, &t.CRTScore, &t.CollegeRank); err != nil {
				return err
			}
			d.TopStudents = append(d.TopStudents, t)
			return nil
		},
		func(rows pgx.Rows) error {
			var s dashboard.StudentOverview
			if err := rows.Scan(&s.StudentID, &s.Name, &s.Email, &s.RollNo, &s.Department, &s.AcademicYear, &s.CoursesAssigned, &s.CoursesCompleted); err != nil {
				return err
			}
			s.CourseCompletionPercentage = dashboard.Round2(dashboard.Percent(s.CoursesCompleted, s.CoursesAssigned))
			d.StudentsOverview = append(d.StudentsOverview, s)
			return nil
		},
	}

	for _, step := range steps {
		if err := forEachRow(br, step); err != nil {
			return nil, errFailedLoadDashboard("college", err)
		}
	}

	p := &d.PerformanceSummary
	if err := br.QueryRow().Scan(&p.AverageCRTScore, &p.HighestCRTScore, &p.LowestCRTScore, &p.StudentsAbove70Percent, &p.StudentsBelow40Percent); err != nil {
		return nil, errFailedLoadDashboard("college", err)
	}
	p.AverageCRTScore = dashboard.Round2(p.AverageCRTScore)
	p.HighestCRTScore = dashboard.Round2(p.HighestCRTScore)
	p.LowestCRTScore = dashboard.Round2(p.LowestCRTScore)

	return d, nil
}

func (r *DashboardRepository) Student(ctx context.Context, studentID int) (*dashboard.Student, error) {
	batch := &pgx.Batch{}
	batch.Queue(`
		SELECT s.id, u.full_name, c.name, b.branch_name, ay.year_name, s.roll_number, s.student_unique_id
		FROM students s
		JOIN users u ON u.id = s.user_id
		JOIN colleges c ON c.id = s.college_id
		JOIN college_branches b ON b.id = s.branch_id
		JOIN academic_years ay ON ay.id = s.academic_year_id
		WHERE s.id = $1`, studentID)
	batch.Queue(`
		SELECT co.id, co.title, co.category, co.level, sc.enrollment_status, sc.progress_percentage, sc.course_score
		FROM student_courses sc
		JOIN courses co ON co.id = sc.course_id
		WHERE sc.student_id = $1
		ORDER BY sc.created_at, sc.id`, studentID)
	batch.Queue(`
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_passed)
		FROM test_attempts
		WHERE student_id = $1`, studentID)
	batch.Queue(`
		SELECT COALESCE(MAX(total_crt_score), 0), COALESCE(MAX(average_test_score), 0), COALESCE(MAX(overall_percentage), 0)
		FROM student_scores
		WHERE student_id = $1`, studentID)

	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	d := &dashboard.Student{AssignedCourses: make([]dashboard.AssignedCourse, 0)}

	info := &d.StudentInfo
	err := br.QueryRow().Scan(&info.StudentID, &info.StudentName, &info.College, &info.Branch, &info.AcademicYear, &info.RollNumber, &info.StudentUniqueID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errStudentNotFound)
		}
		return nil, errFailedLoadDashboard("student", err)
	}

	err = forEachRow(br, func(rows pgx.Rows) error {
		var c dashboard.AssignedCourse
		if err := rows.Scan(&c.CourseID, &c.CourseTitle, &c.Category, &c.Level, &c.EnrollmentStatus, &c.ProgressPercentage, &c.CourseScore); err != nil {
			return err
		}
		d.CourseSummary.TotalCoursesAssigned++
		if c.EnrollmentStatus == enrollmentCompleted {
			d.CourseSummary.TotalCoursesCompleted++
		}
		d.AssignedCourses = append(d.AssignedCourses, c)
		return nil
	})
	if err != nil {
		return nil, errFailedLoadDashboard("student", err)
	}

	if err := br.QueryRow().Scan(&d.TestsSummary.TestsAttempted, &d.TestsSummary.TestsPassed); err != nil {
		return nil, errFailedLoadDashboard("student", err)
	}

	perf := &d.PerformanceSummary
	if err := br.QueryRow().Scan(&perf.TotalCRTScore, &perf.AverageTestScore, &perf.OverallPercentage); err != nil {
		return nil, errFailedLoadDashboard("student", err)
	}

	return d, nil
}

// forEachRow consumes the next batched result set.
func forEachRow(br pgx.BatchResults, fn func(pgx.Rows) error) error {
	rows, err := br.Query()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}
