// Package user registers accounts and checks their credentials
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	osuser "os/user"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/thenoetrevino/tandem/internal/models"
)

// dummyHash is compared against when the account does not exist so that
// unknown emails and wrong passwords take the same time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service defines account operations
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// RegisterRequest carries a new account's details. Name defaults to the
// local part of the email.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type repository interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type service struct {
	repo   repository
	cost   int
	logger *slog.Logger
}

// NewService creates a user service hashing with the given bcrypt cost;
// zero means DefaultHashCost.
func NewService(repo repository, cost int, logger *slog.Logger) Service {
	if cost == 0 {
		cost = DefaultHashCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:   repo,
		cost:   cost,
		logger: logger.With("component", "user"),
	}
}

// Register validates and stores a new account
func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	verr := &models.ValidationError{}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		verr.Add("email", ErrInvalidEmail.Error())
	}
	name := strings.TrimSpace(req.Name)
	if name == "" && email != "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		verr.Add("name", ErrNameTooLong.Error())
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		verr.Add("password", ErrPasswordTooShort.Error())
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.repo.CreateUser(ctx, email, name, string(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", email, err)
	}

	s.logger.Info("user registered", "user_id", u.ID)
	return u, nil
}

// Authenticate returns the account when password matches.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("password mismatch", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetUser retrieves an account by ID
func (s *service) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// GetUserByEmail retrieves an account by email
func (s *service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	// reject display-name forms like "Bob <bob@example.com>"
	if addr.Address != strings.TrimSpace(raw) {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

// CurrentUsername returns the operating system user's name, used as the
// default display name for accounts created from the CLI.
// It falls back to $USER and finally to "unknown".
func CurrentUsername() string {
	current, err := osuser.Current()
	if err != nil {
		username := os.Getenv("USER")
		if username == "" {
			return "unknown"
		}
		return username
	}
	return current.Username
}
