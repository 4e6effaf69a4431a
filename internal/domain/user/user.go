package user

import (
	"errors"
	"time"
)

// Sentinel errors shared by the store gateway and the account service.
// Handlers translate these into HTTP statuses.
var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("email or phone already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries the operation-specific 400 message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Request payloads. Presence checks live in the account service so that
// each operation keeps its own 400 message.

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// UpdateProfileRequest overwrites name/email/phone unconditionally; absent
// fields overwrite with the zero value, matching the original update semantics.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	Token string
	User  User
}
