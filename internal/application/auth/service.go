package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-notify-api/internal/domain"
	jwtinfra "github.com/go-notify-api/internal/infrastructure/jwt"
	"github.com/go-notify-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "invalid email or password"

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error)
	// Authenticate verifies a bearer token and resolves its user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type tokenProvider interface {
	Sign(userID string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type service struct {
	users  userStore
	tokens tokenProvider
	cost   int
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func NewService(users userStore, tokens tokenProvider) Service {
	return &service{
		users:  users,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	req.Normalize()
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Login answers unknown emails and wrong passwords identically, and runs a
// bcrypt comparison in both cases.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResult, error) {
	req.Normalize()
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(req.Password))
		return nil, fmt.Errorf("%s: %w", invalidCredentials, domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%s: %w", invalidCredentials, domain.ErrUnauthorized)
	}
	return s.issue(u)
}

func (s *service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("user no longer exists: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) issue(u *domain.User) (*domain.AuthResult, error) {
	token, err := s.tokens.Sign(u.UserID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.AuthResult{User: u.Summary(), Token: token}, nil
}

// dummy is the hash compared against when the email is unknown.
func (s *service) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), s.cost)
	})
	return s.dummyHash
}
