package postgres

import (
	"context"

	"github.com/cherrycherry3/crt-backend/internal/domain/user"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindForLogin matches identifier against email or phone, restricted to users holding role.
func (r *UserRepository) FindForLogin(ctx context.Context, identifier, role string) (*user.User, error) {
	query := `
		SELECT u.id, u.role_id, r.name, u.full_name, u.email, u.phone, u.password_hash,
		       u.is_active, u.is_verified, u.last_login_at, u.created_at, u.updated_at
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE r.name = $1
		  AND (u.email = $2 OR u.phone = $2)
		LIMIT 1
	`

	u := &user.User{}
	err := r.db.Pool.QueryRow(ctx, query, role, identifier).Scan(
		&u.ID,
		&u.RoleID,
		&u.RoleName,
		&u.FullName,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.IsActive,
		&u.IsVerified,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}

	return u, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int) error {
	query := "UPDATE users SET last_login_at = NOW() WHERE id = $1"

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return errFailedUpdateLastLogin(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}

	return nil
}

// RecordLogin appends a row to login_history. Attempts with no resolved user are skipped.
func (r *UserRepository) RecordLogin(ctx context.Context, attempt user.LoginAttempt) error {
	if attempt.UserID == 0 {
		return nil
	}

	query := `
		INSERT INTO login_history (user_id, login_status, ip_address, reason_if_failed)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
	`

	if _, err := r.db.Pool.Exec(ctx, query, attempt.UserID, attempt.Status, attempt.IPAddress, attempt.Reason); err != nil {
		return errFailedRecordLogin(err)
	}

	return nil
}
