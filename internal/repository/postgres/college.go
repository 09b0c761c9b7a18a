package postgres

import (
	"context"

	"github.com/cherrycherry3/crt-backend/internal/domain/college"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/jackc/pgx/v5"
)

const collegeColumns = `id, name, code, description, email, phone, website, city, state, country,
	is_active, established_year, created_at, updated_at`

type CollegeRepository struct {
	db *DB
}

func NewCollegeRepository(db *DB) *CollegeRepository {
	return &CollegeRepository{db: db}
}

func scanCollege(row pgx.Row) (*college.College, error) {
	c := &college.College{}
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Code,
		&c.Description,
		&c.Email,
		&c.Phone,
		&c.Website,
		&c.City,
		&c.State,
		&c.Country,
		&c.IsActive,
		&c.EstablishedYear,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *CollegeRepository) Create(ctx context.Context, input college.CreateCollegeInput) (*college.College, error) {
	country := input.Country
	if country == nil {
		def := college.DefaultCountry
		country = &def
	}

	query := `
		INSERT INTO colleges (name, code, description, email, phone, website, city, state, country, established_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + collegeColumns

	c, err := scanCollege(r.db.Pool.QueryRow(ctx, query,
		input.Name,
		input.Code,
		input.Description,
		input.Email,
		input.Phone,
		input.Website,
		input.City,
		input.State,
		country,
		input.EstablishedYear,
	))

	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.BadRequest(errDuplicateCollegeCode)
		}
		return nil, errFailedCreateCollege(err)
	}

	return c, nil
}

// ListActive returns active colleges, newest first.
func (r *CollegeRepository) ListActive(ctx context.Context) ([]*college.College, error) {
	query := `SELECT ` + collegeColumns + ` FROM colleges WHERE is_active = TRUE ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, errFailedListColleges(err)
	}
	defer rows.Close()

	colleges := make([]*college.College, 0)
	for rows.Next() {
		c, err := scanCollege(rows)
		if err != nil {
			return nil, errFailedListColleges(err)
		}
		colleges = append(colleges, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateRows(err)
	}

	return colleges, nil
}

func (r *CollegeRepository) GetByID(ctx context.Context, id int) (*college.College, error) {
	query := `SELECT ` + collegeColumns + ` FROM colleges WHERE id = $1`

	c, err := scanCollege(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errCollegeNotFound)
		}
		return nil, errFailedGetCollege(err)
	}

	return c, nil
}

// Update applies only the supplied fields. An empty input returns the current row.
func (r *CollegeRepository) Update(ctx context.Context, id int, input college.UpdateCollegeInput) (*college.College, error) {
	b := newUpdateBuilder(id)
	setIfPresent(b, "name", input.Name)
	setIfPresent(b, "code", input.Code)
	setIfPresent(b, "description", input.Description)
	setIfPresent(b, "email", input.Email)
	setIfPresent(b, "phone", input.Phone)
	setIfPresent(b, "website", input.Website)
	setIfPresent(b, "city", input.City)
	setIfPresent(b, "state", input.State)
	setIfPresent(b, "country", input.Country)
	setIfPresent(b, "established_year", input.EstablishedYear)
	setIfPresent(b, "is_active", input.IsActive)

	if b.empty() {
		return r.GetByID(ctx, id)
	}

	c, err := scanCollege(r.db.Pool.QueryRow(ctx, b.query("colleges", collegeColumns), b.args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errCollegeNotFound)
		}
		if isUniqueViolation(err) {
			return nil, apperrors.BadRequest(errDuplicateCollegeCode)
		}
		return nil, errFailedUpdateCollege(err)
	}

	return c, nil
}

// SoftDelete deactivates an active college. Missing or already inactive rows are NotFound.
func (r *CollegeRepository) SoftDelete(ctx context.Context, id int) error {
	query := "UPDATE colleges SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE"

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return errFailedDeleteCollege(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errCollegeNotFound)
	}

	return nil
}
