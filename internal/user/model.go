package user

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/servicehub-backend/internal/pkg/apperror"
)

const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
)

var (
	ErrNotFound           = apperror.NotFound("user not found")
	ErrEmailAlreadyUsed   = apperror.Conflict("email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrEmailRequired      = apperror.Validation("email is required")
	ErrPasswordTooShort   = apperror.Validation("password must be at least 8 characters")
	ErrInvalidRole        = apperror.Validation("role must be customer or provider")
	ErrIncompleteCoords   = apperror.Validation("latitude and longitude must be given together")
)

// User is an account. Providers and customers share the table; Role tells them apart.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	PhoneNumber  *string
	Address      *string
	Latitude     *float64
	Longitude    *float64
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

func (u *User) IsProvider() bool { return u.Role == RoleProvider }
func (u *User) IsCustomer() bool { return u.Role == RoleCustomer }

// RegisterRequest carries the fields accepted at sign-up.
type RegisterRequest struct {
	Email       string
	Password    string
	FullName    string
	Role        string
	PhoneNumber *string
	Address     *string
	Latitude    *float64
	Longitude   *float64
}
