package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/notifications"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/geocoder89/accounthub/internal/security"
	"github.com/go-playground/validator/v10"
)

// UserStore is the account store gateway the service orchestrates. Kept as an
// interface so tests can run against a fake.
type UserStore interface {
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	Create(ctx context.Context, name, email, phone, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	UpdateProfile(ctx context.Context, id int64, name, email, phone string) (int64, error)
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) (int64, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID int64, email, role string) (string, error)
}

type Accounts struct {
	store    UserStore
	tokens   TokenIssuer
	notifier notifications.Notifier
	log      *slog.Logger
	prom     *observability.Prom
	validate *validator.Validate
}

func NewAccounts(store UserStore, tokens TokenIssuer, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom) *Accounts {
	return &Accounts{
		store:    store,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
		prom:     prom,
		validate: validator.New(),
	}
}

// Emails are trimmed and lower-cased before every store operation, so
// uniqueness and lookups are effectively case-insensitive and the stored form
// is canonical lower-case.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates the account after an advisory uniqueness check. The check is
// inherently racy under concurrent signups; the store's unique constraints
// are the real guarantee, and a constraint rejection from Create surfaces as
// the same user.ErrDuplicate.
func (s *Accounts) Signup(ctx context.Context, req user.SignupRequest) (user.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return user.User{}, user.NewValidationError("All fields are required")
	}

	email := normalizeEmail(req.Email)

	exists, err := s.store.ExistsByEmailOrPhone(ctx, email, req.Phone)

	if err != nil {
		return user.User{}, err
	}

	if exists {
		s.observeAuth("signup", "conflict")
		return user.User{}, user.ErrDuplicate
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		return user.User{}, err
	}

	u, err := s.store.Create(ctx, req.Name, email, req.Phone, hash)

	if err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			// lost the check-then-insert race
			s.observeAuth("signup", "conflict")
		}

		return user.User{}, err
	}

	s.observeAuth("signup", "created")
	s.notifyWelcome(ctx, u)

	return u, nil
}

// Login authenticates by email and password. "No such user" and "wrong
// password" both come back as user.ErrInvalidCredentials so callers cannot
// enumerate accounts.
func (s *Accounts) Login(ctx context.Context, req user.LoginRequest) (user.LoginResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return user.LoginResult{}, user.NewValidationError("Email and password are required")
	}

	u, err := s.store.GetByEmail(ctx, normalizeEmail(req.Email))

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.observeAuth("login", "rejected")
			return user.LoginResult{}, user.ErrInvalidCredentials
		}

		return user.LoginResult{}, err
	}

	if !security.CheckPassword(u.PasswordHash, req.Password) {
		s.observeAuth("login", "rejected")
		return user.LoginResult{}, user.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(u.ID, u.Email, u.Role)

	if err != nil {
		return user.LoginResult{}, err
	}

	s.observeAuth("login", "ok")

	return user.LoginResult{Token: token, User: u}, nil
}

// ForgotPassword overwrites the credential given only an email. No proof of
// prior access is required here; that matches the upstream contract and is
// recorded as a known weakness rather than silently hardened.
func (s *Accounts) ForgotPassword(ctx context.Context, req user.ForgotPasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return user.NewValidationError("Email and new password are required")
	}

	email := normalizeEmail(req.Email)

	_, err := s.store.GetByEmail(ctx, email)

	if err != nil {
		return err
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		return err
	}

	_, err = s.store.UpdatePasswordByEmail(ctx, email, hash)

	if err != nil {
		return err
	}

	s.observeAuth("forgot_password", "ok")
	s.notifyPasswordChanged(ctx, email)

	return nil
}

func (s *Accounts) ListUsers(ctx context.Context) ([]user.User, error) {
	return s.store.List(ctx)
}

func (s *Accounts) GetUser(ctx context.Context, id int64) (user.User, error) {
	return s.store.GetByID(ctx, id)
}

// UpdateUser overwrites the profile fields unconditionally. A nonexistent id
// is a silent no-op, not an error.
func (s *Accounts) UpdateUser(ctx context.Context, id int64, req user.UpdateProfileRequest) error {
	affected, err := s.store.UpdateProfile(ctx, id, req.Name, normalizeEmail(req.Email), req.Phone)

	if err != nil {
		return err
	}

	if affected == 0 {
		s.log.DebugContext(ctx, "update matched no rows", "id", id)
	}

	return nil
}

// DeleteUser succeeds whether or not the row existed.
func (s *Accounts) DeleteUser(ctx context.Context, id int64) error {
	affected, err := s.store.DeleteByID(ctx, id)

	if err != nil {
		return err
	}

	if affected == 0 {
		s.log.DebugContext(ctx, "delete matched no rows", "id", id)
	}

	return nil
}

func (s *Accounts) DeleteAllUsers(ctx context.Context) error {
	affected, err := s.store.DeleteAll(ctx)

	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "deleted all users", "count", affected)

	return nil
}

// Notifications are best-effort: a provider failure is logged, never returned.

func (s *Accounts) notifyWelcome(ctx context.Context, u user.User) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.SendWelcome(ctx, notifications.WelcomeInput{Email: u.Email, Name: u.Name})

	if err != nil {
		s.log.WarnContext(ctx, "welcome notification failed", "err", err)
	}
}

func (s *Accounts) notifyPasswordChanged(ctx context.Context, email string) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.SendPasswordChanged(ctx, notifications.PasswordChangedInput{Email: email})

	if err != nil {
		s.log.WarnContext(ctx, "password-changed notification failed", "err", err)
	}
}

func (s *Accounts) observeAuth(op, result string) {
	if s.prom != nil {
		s.prom.ObserveAuth(op, result)
	}
}
