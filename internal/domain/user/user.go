package user

import "time"

type User struct {
	ID           int
	RoleID       int
	RoleName     string
	FullName     string
	Email        string
	Phone        *string
	PasswordHash string
	IsActive     bool
	IsVerified   bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type LoginStatus string

const (
	LoginSuccess LoginStatus = "SUCCESS"
	LoginFailed  LoginStatus = "FAILED"
)

// LoginAttempt is one row of login_history.
type LoginAttempt struct {
	UserID    int
	Status    LoginStatus
	IPAddress string
	Reason    string
}
