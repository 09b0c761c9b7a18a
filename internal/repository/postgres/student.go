package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/cherrycherry3/crt-backend/internal/domain/student"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
)

type StudentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// CollegeIDForAdmin resolves the college a college admin user is mapped to.
func (r *StudentRepository) CollegeIDForAdmin(ctx context.Context, userID int) (int, error) {
	query := `SELECT college_id FROM college_admins WHERE user_id = $1 ORDER BY is_primary DESC, id LIMIT 1`

	var collegeID int
	if err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&collegeID); err != nil {
		if isNoRows(err) {
			return 0, apperrors.Forbidden(errCollegeAdminNotMapped)
		}
		return 0, errFailedResolveCollege(err)
	}

	return collegeID, nil
}

// GetByUserID resolves the student profile of a logged-in user.
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int) (*student.Student, error) {
	query := `
		SELECT id, user_id, college_id, branch_id, academic_year_id, COALESCE(roll_number, ''),
		       student_unique_id, enrollment_status, created_at
		FROM students
		WHERE user_id = $1
	`

	s := &student.Student{}
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.CollegeID,
		&s.BranchID,
		&s.AcademicYearID,
		&s.RollNumber,
		&s.StudentUniqueID,
		&s.EnrollmentStatus,
		&s.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errStudentNotFound)
		}
		return nil, errFailedResolveStudent(err)
	}

	return s, nil
}

// insertStudentQuery only inserts when the branch and academic year belong to
// the student's college, and returns no row otherwise.
const insertStudentQuery = `
	INSERT INTO students (user_id, college_id, branch_id, academic_year_id, roll_number,
		student_unique_id, enrollment_status)
	SELECT $1::INTEGER, $2::INTEGER, $3::INTEGER, $4::INTEGER, $5::VARCHAR, $6::VARCHAR, $7::VARCHAR
	WHERE EXISTS (SELECT 1 FROM college_branches WHERE id = $3::INTEGER AND college_id = $2::INTEGER)
	  AND EXISTS (SELECT 1 FROM academic_years WHERE id = $4::INTEGER AND college_id = $2::INTEGER)
	RETURNING id, user_id, college_id, branch_id, academic_year_id, roll_number,
		student_unique_id, enrollment_status, created_at
`

// Create inserts the user, the student profile and an empty score row atomically.
func (r *StudentRepository) Create(ctx context.Context, input student.CreateStudentInput) (*student.Student, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	userQuery := `
		INSERT INTO users (role_id, full_name, email, phone, password_hash, is_active, is_verified)
		VALUES ((SELECT id FROM roles WHERE name = $1), $2, $3, NULLIF($4, ''), $5, TRUE, TRUE)
		RETURNING id
	`

	var userID int
	err = tx.QueryRow(ctx, userQuery, roleStudent, input.Name, input.Email, input.Phone, input.PasswordHash).Scan(&userID)
	if err != nil {
		return nil, mapStudentInsertError(err)
	}

	s := &student.Student{}
	err = tx.QueryRow(ctx, insertStudentQuery,
		userID,
		input.CollegeID,
		input.BranchID,
		input.AcademicYearID,
		input.RollNumber,
		student.UniqueID(input.CollegeID, input.RollNumber),
		student.StatusActive,
	).Scan(
		&s.ID,
		&s.UserID,
		&s.CollegeID,
		&s.BranchID,
		&s.AcademicYearID,
		&s.RollNumber,
		&s.StudentUniqueID,
		&s.EnrollmentStatus,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, mapStudentInsertError(err)
	}

	if _, err := tx.Exec(ctx, "INSERT INTO student_scores (student_id) VALUES ($1)", s.ID); err != nil {
		return nil, errFailedCreateStudent(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errFailedCommitTransaction(err)
	}

	return s, nil
}

func mapStudentInsertError(err error) error {
	switch {
	case isNoRows(err):
		return apperrors.BadRequest(errInvalidStudentRefs)
	case isUniqueViolation(err):
		return apperrors.BadRequest(errDuplicateStudent)
	case isForeignKeyViolation(err):
		return apperrors.BadRequest(errInvalidStudentRefs)
	default:
		return errFailedCreateStudent(err)
	}
}

const studentSummarySelect = `
	SELECT s.id, u.full_name, u.email, s.roll_number, b.branch_name, ay.year_name, s.enrollment_status,
	       COALESCE(AVG(sc.progress_percentage), 0) AS completion
	FROM students s
	JOIN users u ON u.id = s.user_id
	JOIN college_branches b ON b.id = s.branch_id
	JOIN academic_years ay ON ay.id = s.academic_year_id
	LEFT JOIN student_courses sc ON sc.student_id = s.id
`

const studentSummaryGroupBy = `
	GROUP BY s.id, u.full_name, u.email, s.roll_number, b.branch_name, ay.year_name, s.enrollment_status
`

// List returns every student of the college ordered by name.
func (r *StudentRepository) List(ctx context.Context, collegeID int) ([]*student.Summary, error) {
	query := studentSummarySelect + ` WHERE s.college_id = $1 ` + studentSummaryGroupBy + ` ORDER BY u.full_name, s.id`
	return r.querySummaries(ctx, query, collegeID)
}

// Filter narrows by branch and year and bounds average course progress inclusively.
func (r *StudentRepository) Filter(ctx context.Context, collegeID int, f student.Filter) ([]*student.Summary, error) {
	where := []string{"s.college_id = $1"}
	args := []any{collegeID}

	if f.BranchID != nil {
		args = append(args, *f.BranchID)
		where = append(where, fmt.Sprintf("s.branch_id = $%d", len(args)))
	}
	if f.AcademicYearID != nil {
		args = append(args, *f.AcademicYearID)
		where = append(where, fmt.Sprintf("s.academic_year_id = $%d", len(args)))
	}

	var having []string
	if f.MinCompletion != nil {
		args = append(args, *f.MinCompletion)
		having = append(having, fmt.Sprintf("COALESCE(AVG(sc.progress_percentage), 0) >= $%d", len(args)))
	}
	if f.MaxCompletion != nil {
		args = append(args, *f.MaxCompletion)
		having = append(having, fmt.Sprintf("COALESCE(AVG(sc.progress_percentage), 0) <= $%d", len(args)))
	}

	query := studentSummarySelect + " WHERE " + strings.Join(where, " AND ") + studentSummaryGroupBy
	if len(having) > 0 {
		query += " HAVING " + strings.Join(having, " AND ")
	}
	query += " ORDER BY u.full_name, s.id"

	return r.querySummaries(ctx, query, args...)
}

// Search matches q case-insensitively as a literal substring of name, email, roll number or branch.
func (r *StudentRepository) Search(ctx context.Context, collegeID int, q string) ([]*student.Summary, error) {
	query := studentSummarySelect + `
		WHERE s.college_id = $1
		  AND (u.full_name ILIKE $2 OR u.email ILIKE $2 OR s.roll_number ILIKE $2 OR b.branch_name ILIKE $2)
	` + studentSummaryGroupBy + ` ORDER BY u.full_name, s.id`

	return r.querySummaries(ctx, query, collegeID, containsPattern(q))
}

func (r *StudentRepository) querySummaries(ctx context.Context, query string, args ...any) ([]*student.Summary, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListStudents(err)
	}
	defer rows.Close()

	summaries := make([]*student.Summary, 0)
	for rows.Next() {
		s := &student.Summary{}
		if err := rows.Scan(
			&s.StudentID,
			&s.Name,
			&s.Email,
			&s.RollNumber,
			&s.Branch,
			&s.AcademicYear,
			&s.Status,
			&s.CompletionPercentage,
		); err != nil {
			return nil, errFailedScanStudent(err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateRows(err)
	}

	return summaries, nil
}

// Progress ranks the college's students by average course progress, highest first.
func (r *StudentRepository) Progress(ctx context.Context, collegeID int) ([]*student.Progress, error) {
	query := `
		SELECT s.id, u.full_name, u.email, b.branch_name, ay.year_number,
		       COALESCE(ss.average_test_score, 0) AS avg_score,
		       COALESCE(AVG(sc.progress_percentage), 0) AS progress
		FROM students s
		JOIN users u ON u.id = s.user_id
		JOIN college_branches b ON b.id = s.branch_id
		JOIN academic_years ay ON ay.id = s.academic_year_id
		LEFT JOIN student_scores ss ON ss.student_id = s.id
		LEFT JOIN student_courses sc ON sc.student_id = s.id
		WHERE s.college_id = $1
		GROUP BY s.id, u.full_name, u.email, b.branch_name, ay.year_number, ss.average_test_score
		ORDER BY progress DESC, s.id
	`

	rows, err := r.db.Pool.Query(ctx, query, collegeID)
	if err != nil {
		return nil, errFailedListStudents(err)
	}
	defer rows.Close()

	ranked := make([]*student.Progress, 0)
	for rows.Next() {
		p := &student.Progress{Rank: len(ranked) + 1}
		if err := rows.Scan(&p.StudentID, &p.Name, &p.Email, &p.Department, &p.Year, &p.AvgScore, &p.Progress); err != nil {
			return nil, errFailedScanStudent(err)
		}
		ranked = append(ranked, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateRows(err)
	}

	return ranked, nil
}
