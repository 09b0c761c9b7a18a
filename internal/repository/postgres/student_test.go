package postgres

import (
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapStudentInsertError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{"branch or year of another college", pgx.ErrNoRows, apperrors.ErrBadRequest, errInvalidStudentRefs},
		{"duplicate email", &pgconn.PgError{Code: pgUniqueViolation}, apperrors.ErrBadRequest, errDuplicateStudent},
		{"missing branch", fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgForeignKeyViolation}), apperrors.ErrBadRequest, errInvalidStudentRefs},
		{"connection lost", errors.New("conn closed"), nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapStudentInsertError(tt.err)
			if tt.sentinel == nil {
				assert.NotErrorIs(t, err, apperrors.ErrBadRequest)
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.ErrorIs(t, err, tt.sentinel)
			msg, ok := apperrors.Message(err)
			assert.True(t, ok)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestInsertStudentQuery_ScopesReferencesToCollege(t *testing.T) {
	assert.Contains(t, insertStudentQuery, "FROM college_branches WHERE id = $3::INTEGER AND college_id = $2::INTEGER")
	assert.Contains(t, insertStudentQuery, "FROM academic_years WHERE id = $4::INTEGER AND college_id = $2::INTEGER")
	assert.NotContains(t, insertStudentQuery, "VALUES")
}
