// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already exists")
)

// UserInfo is the slice of an account that authentication needs.
type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	TokenVersion int
	CreatedAt    time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, email, passwordHash, name string) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Client identifies the device a session was opened from.
type Client struct {
	UserAgent string
	IP        string
}

// SignupHook runs after an account is created. A failing hook is logged
// and does not undo the registration.
type SignupHook func(ctx context.Context, userID string) error

type Option func(*Service)

func WithSignupHook(hook SignupHook) Option {
	return func(s *Service) { s.onSignup = hook }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	repo        Repository
	jwt         *JWTManager
	users       UserProvider
	revocations RevocationStore
	logger      *slog.Logger
	onSignup    SignupHook
	now         func() time.Time
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	users UserProvider,
	revocations RevocationStore,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		repo:        repo,
		jwt:         jwt,
		users:       users,
		revocations: revocations,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login runs a password check even for unknown emails so response time
// does not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, req LoginRequest, client Client) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	var stored *string
	switch {
	case errors.Is(err, core.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("login: %w", err)
	default:
		stored = &u.PasswordHash
	}

	ok, rehash, err := core.VerifyPasswordTimingSafe(req.Password, stored)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok || u == nil {
		return nil, ErrInvalidCredentials
	}

	if rehash != "" {
		if err := s.users.UpdatePassword(ctx, u.ID, rehash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed", "user_id", u.ID, "error", err)
		}
	}

	return s.openSession(ctx, u, client)
}

func (s *Service) Register(ctx context.Context, req RegisterRequest, client Client) (*AuthResponse, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	u, err := s.users.Create(ctx, req.Email, hash, req.Name)
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	if s.onSignup != nil {
		if err := s.onSignup(ctx, u.ID); err != nil {
			s.logger.WarnContext(ctx, "signup hook failed", "user_id", u.ID, "error", err)
		}
	}

	return s.openSession(ctx, u, client)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*UserResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("current user: %w", core.ErrUnauthorized)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(u)
	return &resp, nil
}

// PruneExpired deletes refresh tokens that expired before the cutoff.
func (s *Service) PruneExpired(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteExpired(ctx, before)
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
