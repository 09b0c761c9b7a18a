package auth

import (
	"context"
	"errors"

	"github.com/cherrycherry3/crt-backend/internal/domain/user"
	"github.com/cherrycherry3/crt-backend/internal/rbac"
	apperrors "github.com/cherrycherry3/crt-backend/pkg/errors"
	"github.com/cherrycherry3/crt-backend/pkg/password"
)

// dummyBcryptHash is compared against when no user matches so that unknown
// identifiers cost the same as a wrong password.
const dummyBcryptHash = "$2a$12$dWR5CQpS4zNHLavLSIr4o.P6QDQEUJKv7mJ7WekUHHqyRSRMJzH0S"

// UserLookup finds the user whose email or phone equals identifier and whose role
// is role. It returns an error wrapping apperrors.ErrNotFound when nothing matches.
type UserLookup interface {
	FindForLogin(ctx context.Context, identifier, role string) (*user.User, error)
}

type TokenIssuer interface {
	Issue(subjectID int, role string, permissions []string) (string, error)
}

// LoginResult is returned on successful credential verification.
type LoginResult struct {
	UserID      int
	AccessToken string
	TokenType   string
	Role        string
}

// CredentialVerifier checks a login attempt and issues a token carrying the
// fixed permission list of the user's stored role.
type CredentialVerifier struct {
	users   UserLookup
	tokens  TokenIssuer
	checker *rbac.Checker
}

func NewCredentialVerifier(users UserLookup, tokens TokenIssuer, checker *rbac.Checker) *CredentialVerifier {
	return &CredentialVerifier{
		users:   users,
		tokens:  tokens,
		checker: checker,
	}
}

// Verify returns 401/403 AppErrors for rejected attempts. When the user exists but
// is rejected, the returned user id is non-zero so the attempt can be recorded.
func (v *CredentialVerifier) Verify(ctx context.Context, identifier, plain, role string) (*LoginResult, int, error) {
	u, err := v.users.FindForLogin(ctx, identifier, role)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			password.Verify(plain, dummyBcryptHash)
			return nil, 0, apperrors.Unauthorized(msgInvalidRoleCredentials)
		}
		return nil, 0, apperrors.InternalServer(msgUserLookupFailed, err)
	}

	if !u.IsActive {
		return nil, u.ID, apperrors.Forbidden(msgAccountInactive)
	}

	if !u.IsVerified {
		return nil, u.ID, apperrors.Forbidden(msgAccountNotVerified)
	}

	if !password.Verify(plain, u.PasswordHash) {
		return nil, u.ID, apperrors.Unauthorized(msgInvalidCredentials)
	}

	// The stored role is authoritative, not the requested one.
	storedRole := rbac.Role(u.RoleName)
	permissions := v.checker.PermissionsFor(storedRole)

	token, err := v.tokens.Issue(u.ID, storedRole.String(), permissions)
	if err != nil {
		return nil, u.ID, apperrors.InternalServer(msgTokenIssueFailed, err)
	}

	return &LoginResult{
		UserID:      u.ID,
		AccessToken: token,
		TokenType:   TokenType,
		Role:        storedRole.String(),
	}, u.ID, nil
}
