package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shivanand-hulikatti/virtual-events/internal/metrics"
	"github.com/Shivanand-hulikatti/virtual-events/internal/model"
	"github.com/Shivanand-hulikatti/virtual-events/internal/notify"
	"github.com/Shivanand-hulikatti/virtual-events/internal/repository"
)

// BcryptCost is the cost factor for password hashing.
const BcryptCost = 10

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

// ErrInvalidCredentials is returned when the password does not match.
var ErrInvalidCredentials = errors.New("incorrect password")

// TokenIssuer signs identity tokens for authenticated users.
type TokenIssuer interface {
	Issue(user model.User) (string, error)
}

// Notifier accepts fire-and-forget notifications.
type Notifier interface {
	Enqueue(n model.Notification) bool
}

// UserService handles registration and login.
type UserService struct {
	users    *repository.UserRepository
	tokens   TokenIssuer
	notifier Notifier
	logger   zerolog.Logger
}

// NewUserService constructs a UserService with its dependencies.
func NewUserService(
	users *repository.UserRepository,
	tokens TokenIssuer,
	notifier Notifier,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the request, stores the user with a bcrypt hash and
// queues a welcome notification once the store has committed.
func (s *UserService) Register(ctx context.Context, req model.RegisterUserRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Role = model.Role(strings.TrimSpace(string(req.Role)))
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if len(req.Password) > MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, MaxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.UsersRegistered.WithLabelValues(string(user.Role)).Inc()
	s.logger.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")

	if s.notifier != nil {
		s.notifier.Enqueue(notify.Welcome(*user))
	}
	return user, nil
}

// Verify checks email and password and returns the matching user.
func (s *UserService) Verify(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *UserService) Login(ctx context.Context, req model.LoginRequest) (string, error) {
	if err := validateStruct(req); err != nil {
		return "", err
	}

	user, err := s.Verify(ctx, req.Email, req.Password)
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	s.logger.Debug().Int64("user_id", user.ID).Msg("user logged in")
	return token, nil
}

// Count returns the number of registered users.
func (s *UserService) Count() int {
	return s.users.Count()
}
