package postgres

import (
	"context"

	"github.com/cherrycherry3/crt-backend/internal/domain/enrollment"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
)

type EnrollmentRepository struct {
	db *DB
}

func NewEnrollmentRepository(db *DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// AssignToCohort enrolls every student of the branch and academic year in the course,
// skipping existing enrollments. It returns the number of new enrollments.
func (r *EnrollmentRepository) AssignToCohort(ctx context.Context, input enrollment.AssignInput) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	var available bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM college_courses
			WHERE course_id = $1 AND college_id = $2 AND is_active = TRUE
		)`, input.CourseID, input.CollegeID,
	).Scan(&available)
	if err != nil {
		return 0, errFailedAssignCourse(err)
	}
	if !available {
		return 0, apperrors.NotFound(errCourseNotAvailable)
	}

	var cohort int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM students
		WHERE college_id = $1 AND branch_id = $2 AND academic_year_id = $3`,
		input.CollegeID, input.BranchID, input.AcademicYearID,
	).Scan(&cohort)
	if err != nil {
		return 0, errFailedAssignCourse(err)
	}
	if cohort == 0 {
		return 0, apperrors.BadRequest(errNoStudentsForCohort)
	}

	result, err := tx.Exec(ctx, `
		INSERT INTO student_courses (student_id, course_id, enrollment_status, progress_percentage)
		SELECT s.id, $4::INTEGER, $5::VARCHAR, 0
		FROM students s
		WHERE s.college_id = $1 AND s.branch_id = $2 AND s.academic_year_id = $3
		ON CONFLICT (student_id, course_id) DO NOTHING`,
		input.CollegeID, input.BranchID, input.AcademicYearID, input.CourseID, enrollmentAssigned,
	)
	if err != nil {
		return 0, errFailedAssignCourse(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, errFailedCommitTransaction(err)
	}

	return int(result.RowsAffected()), nil
}

func (r *EnrollmentRepository) ListForStudent(ctx context.Context, studentID int) ([]*enrollment.StudentCourse, error) {
	query := `
		SELECT c.id, c.title, c.category, c.level, sc.enrollment_status, sc.progress_percentage,
		       sc.course_score, sc.last_accessed_at
		FROM student_courses sc
		JOIN courses c ON c.id = sc.course_id
		WHERE sc.student_id = $1
		ORDER BY sc.created_at, sc.id
	`

	rows, err := r.db.Pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, errFailedListEnrollments(err)
	}
	defer rows.Close()

	courses := make([]*enrollment.StudentCourse, 0)
	for rows.Next() {
		sc := &enrollment.StudentCourse{}
		if err := rows.Scan(
			&sc.CourseID,
			&sc.CourseTitle,
			&sc.Category,
			&sc.Level,
			&sc.Status,
			&sc.ProgressPercentage,
			&sc.CourseScore,
			&sc.LastAccessedAt,
		); err != nil {
			return nil, errFailedListEnrollments(err)
		}
		courses = append(courses, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateRows(err)
	}

	return courses, nil
}

// UpdateProgress stores the new percentage, advances the status and stamps last access.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, update enrollment.ProgressUpdate) (*enrollment.Enrollment, error) {
	var newStatus *enrollment.Status
	if status, ok := enrollment.StatusForProgress(update.ProgressPercentage); ok {
		newStatus = &status
	}

	query := `
		UPDATE student_courses
		SET progress_percentage = $3,
		    enrollment_status = COALESCE($4, enrollment_status),
		    completion_date = CASE WHEN $4 = $6 THEN $5 ELSE completion_date END,
		    last_accessed_at = $5,
		    updated_at = NOW()
		WHERE student_id = $1 AND course_id = $2
		RETURNING id, student_id, course_id, enrollment_status, progress_percentage,
		          completion_date, last_accessed_at, course_score
	`

	e := &enrollment.Enrollment{}
	err := r.db.Pool.QueryRow(ctx, query,
		update.StudentID,
		update.CourseID,
		update.ProgressPercentage,
		newStatus,
		update.At,
		enrollmentCompleted,
	).Scan(
		&e.ID,
		&e.StudentID,
		&e.CourseID,
		&e.Status,
		&e.ProgressPercentage,
		&e.CompletionDate,
		&e.LastAccessedAt,
		&e.CourseScore,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errCourseNotAssigned)
		}
		return nil, errFailedUpdateProgress(err)
	}

	return e, nil
}
