package postgres

import (
	"context"

	"github.com/cherrycherry3/crt-backend/internal/domain/coursefile"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/jackc/pgx/v5"
)

const courseFileColumns = `id, course_id, file_name, file_title, file_description, file_type, file_size,
	mime_type, file_url, s3_key, duration_seconds, is_published, download_allowed, created_at, updated_at`

type CourseFileRepository struct {
	db *DB
}

func NewCourseFileRepository(db *DB) *CourseFileRepository {
	return &CourseFileRepository{db: db}
}

func scanCourseFile(row pgx.Row) (*coursefile.CourseFile, error) {
	f := &coursefile.CourseFile{}
	err := row.Scan(
		&f.ID,
		&f.CourseID,
		&f.FileName,
		&f.FileTitle,
		&f.FileDescription,
		&f.FileType,
		&f.FileSize,
		&f.MimeType,
		&f.FileURL,
		&f.S3Key,
		&f.DurationSeconds,
		&f.IsPublished,
		&f.DownloadAllowed,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}

// Create records an uploaded file and points the course thumbnail at it in one transaction.
func (r *CourseFileRepository) Create(ctx context.Context, input coursefile.CreateCourseFileInput) (*coursefile.CourseFile, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx,
		"UPDATE courses SET thumbnail_url = $2, updated_at = NOW() WHERE id = $1",
		input.CourseID, input.FileURL,
	)
	if err != nil {
		return nil, errFailedSetThumbnail(err)
	}
	if result.RowsAffected() == 0 {
		return nil, apperrors.NotFound(errCourseNotFound)
	}

	query := `
		INSERT INTO course_files (course_id, file_name, file_title, file_description, file_type, file_size,
			mime_type, file_url, s3_key, duration_seconds, is_published, download_allowed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, TRUE)
		RETURNING ` + courseFileColumns

	f, err := scanCourseFile(tx.QueryRow(ctx, query,
		input.CourseID,
		input.FileName,
		input.FileTitle,
		input.FileDescription,
		input.FileType,
		input.FileSize,
		input.MimeType,
		input.FileURL,
		input.S3Key,
		input.DurationSeconds,
	))
	if err != nil {
		return nil, errFailedCreateCourseFile(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errFailedCommitTransaction(err)
	}

	return f, nil
}

func (r *CourseFileRepository) ListByCourse(ctx context.Context, courseID int) ([]*coursefile.CourseFile, error) {
	query := `SELECT ` + courseFileColumns + ` FROM course_files WHERE course_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, courseID)
}

func (r *CourseFileRepository) ListPublishedPDFs(ctx context.Context, courseID int) ([]*coursefile.CourseFile, error) {
	query := `
		SELECT ` + courseFileColumns + `
		FROM course_files
		WHERE course_id = $1 AND file_type = $2 AND is_published = TRUE
		ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, courseID, coursefile.TypePDF)
}

func (r *CourseFileRepository) GetPDF(ctx context.Context, id int) (*coursefile.CourseFile, error) {
	query := `SELECT ` + courseFileColumns + ` FROM course_files WHERE id = $1 AND file_type = $2`

	f, err := scanCourseFile(r.db.Pool.QueryRow(ctx, query, id, coursefile.TypePDF))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errPDFNotFound)
		}
		return nil, errFailedGetCourseFile(err)
	}

	return f, nil
}

func (r *CourseFileRepository) list(ctx context.Context, query string, args ...any) ([]*coursefile.CourseFile, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListCourseFiles(err)
	}
	defer rows.Close()

	files := make([]*coursefile.CourseFile, 0)
	for rows.Next() {
		f, err := scanCourseFile(rows)
		if err != nil {
			return nil, errFailedListCourseFiles(err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateRows(err)
	}

	return files, nil
}
