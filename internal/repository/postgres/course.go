package postgres

import (
	"context"

	"github.com/cherrycherry3/crt-backend/internal/domain/course"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/jackc/pgx/v5"
)

const courseColumns = `id, teacher_id, title, description, course_code, category, level, duration_hours,
	expected_completion_days, thumbnail_url, is_active, is_published, created_at, updated_at`

type CourseRepository struct {
	db *DB
}

func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func scanCourse(row pgx.Row) (*course.Course, error) {
	c := &course.Course{}
	err := row.Scan(
		&c.ID,
		&c.TeacherID,
		&c.Title,
		&c.Description,
		&c.CourseCode,
		&c.Category,
		&c.Level,
		&c.DurationHours,
		&c.ExpectedCompletionDays,
		&c.ThumbnailURL,
		&c.IsActive,
		&c.IsPublished,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func collectCourses(rows pgx.Rows) ([]*course.Course, error) {
	defer rows.Close()

	courses := make([]*course.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, errFailedListCourses(err)
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateRows(err)
	}

	return courses, nil
}

// Create inserts an active, unpublished course.
func (r *CourseRepository) Create(ctx context.Context, input course.CreateCourseInput) (*course.Course, error) {
	level := input.Level
	if level == "" {
		level = course.LevelBeginner
	}

	query := `
		INSERT INTO courses (title, description, course_code, category, level, duration_hours,
			expected_completion_days, thumbnail_url, teacher_id, is_active, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, FALSE)
		RETURNING ` + courseColumns

	c, err := scanCourse(r.db.Pool.QueryRow(ctx, query,
		input.Title,
		input.Description,
		input.CourseCode,
		input.Category,
		level,
		input.DurationHours,
		input.ExpectedCompletionDays,
		input.ThumbnailURL,
		input.TeacherID,
	))

	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.BadRequest(errDuplicateCourseCode)
		}
		return nil, errFailedCreateCourse(err)
	}

	return c, nil
}

func (r *CourseRepository) ListActive(ctx context.Context) ([]*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE is_active = TRUE ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, errFailedListCourses(err)
	}

	return collectCourses(rows)
}

func (r *CourseRepository) GetByID(ctx context.Context, id int) (*course.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	c, err := scanCourse(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errCourseNotFound)
		}
		return nil, errFailedGetCourse(err)
	}

	return c, nil
}

func (r *CourseRepository) Update(ctx context.Context, id int, input course.UpdateCourseInput) (*course.Course, error) {
	b := newUpdateBuilder(id)
	setIfPresent(b, "title", input.Title)
	setIfPresent(b, "description", input.Description)
	setIfPresent(b, "course_code", input.CourseCode)
	setIfPresent(b, "category", input.Category)
	setIfPresent(b, "level", input.Level)
	setIfPresent(b, "duration_hours", input.DurationHours)
	setIfPresent(b, "expected_completion_days", input.ExpectedCompletionDays)
	setIfPresent(b, "thumbnail_url", input.ThumbnailURL)
	setIfPresent(b, "teacher_id", input.TeacherID)
	setIfPresent(b, "is_active", input.IsActive)
	setIfPresent(b, "is_published", input.IsPublished)

	if b.empty() {
		return r.GetByID(ctx, id)
	}

	c, err := scanCourse(r.db.Pool.QueryRow(ctx, b.query("courses", courseColumns), b.args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errCourseNotFound)
		}
		if isUniqueViolation(err) {
			return nil, apperrors.BadRequest(errDuplicateCourseCode)
		}
		return nil, errFailedUpdateCourse(err)
	}

	return c, nil
}

func (r *CourseRepository) SoftDelete(ctx context.Context, id int) error {
	query := "UPDATE courses SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE"

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return errFailedDeleteCourse(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errCourseNotFound)
	}

	return nil
}

// ListForCollege returns the college's active allocations with enrollment counters
// scoped to that college's students.
func (r *CourseRepository) ListForCollege(ctx context.Context, collegeID int) ([]*course.CollegeCourse, error) {
	query := `
		SELECT c.id, c.title, c.category, c.level,
		       COUNT(sc.id) AS assigned,
		       COUNT(sc.id) FILTER (WHERE sc.enrollment_status = $2) AS completed
		FROM courses c
		JOIN college_courses cc ON cc.course_id = c.id
		LEFT JOIN students s ON s.college_id = cc.college_id
		LEFT JOIN student_courses sc ON sc.course_id = c.id AND sc.student_id = s.id
		WHERE cc.college_id = $1
		  AND cc.is_active = TRUE
		  AND c.is_active = TRUE
		GROUP BY c.id, c.title, c.category, c.level
		ORDER BY c.title
	`

	rows, err := r.db.Pool.Query(ctx, query, collegeID, enrollmentCompleted)
	if err != nil {
		return nil, errFailedListCourses(err)
	}
	defer rows.Close()

	courses := make([]*course.CollegeCourse, 0)
	for rows.Next() {
		cc := &course.CollegeCourse{}
		if err := rows.Scan(&cc.CourseID, &cc.Title, &cc.Category, &cc.Level, &cc.StudentsAssigned, &cc.StudentsCompleted); err != nil {
			return nil, errFailedListCourses(err)
		}
		courses = append(courses, cc)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateRows(err)
	}

	return courses, nil
}

// ListAvailableForCollege returns active, published courses allocated to the college, newest first.
func (r *CourseRepository) ListAvailableForCollege(ctx context.Context, collegeID int) ([]*course.Course, error) {
	query := `
		SELECT c.id, c.teacher_id, c.title, c.description, c.course_code, c.category, c.level, c.duration_hours,
		       c.expected_completion_days, c.thumbnail_url, c.is_active, c.is_published, c.created_at, c.updated_at
		FROM courses c
		JOIN college_courses cc ON cc.course_id = c.id
		WHERE cc.college_id = $1
		  AND cc.is_active = TRUE
		  AND c.is_active = TRUE
		  AND c.is_published = TRUE
		ORDER BY c.created_at DESC, c.id DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, collegeID)
	if err != nil {
		return nil, errFailedListCourses(err)
	}

	return collectCourses(rows)
}
