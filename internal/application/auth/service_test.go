package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-notify-api/internal/domain"
	jwtinfra "github.com/go-notify-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Sign(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
func (m *mockTokens) Verify(token string) (*jwtinfra.Claims, error) {
	args := m.Called(token)
	if c, _ := args.Get(0).(*jwtinfra.Claims); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService(users *mockUserStore, tokens *mockTokens) *service {
	svc := NewService(users, tokens).(*service)
	svc.cost = bcrypt.MinCost
	return svc
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// --- Register ---

func TestRegister_NormalizesAndHashes(t *testing.T) {
	users, tokens := new(mockUserStore), new(mockTokens)
	users.On("ExistsByEmail", mock.Anything, "ada@example.com").Return(false, nil)
	var stored *domain.User
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.User) }).
		Return(nil)
	tokens.On("Sign", mock.AnythingOfType("string")).Return("tok", nil)

	res, err := newTestService(users, tokens).Register(context.Background(), domain.RegisterRequest{
		Name: "  Ada ", Email: " Ada@Example.com ", Password: "secret1",
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Ada", stored.Name)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, domain.UserSummary{ID: stored.UserID, Name: "Ada", Email: "ada@example.com"}, res.User)
	tokens.AssertCalled(t, "Sign", stored.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users, tokens := new(mockUserStore), new(mockTokens)
	users.On("ExistsByEmail", mock.Anything, "ada@example.com").Return(true, nil)

	_, err := newTestService(users, tokens).Register(context.Background(), domain.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_InsertRaceIsConflict(t *testing.T) {
	users, tokens := new(mockUserStore), new(mockTokens)
	users.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	users.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("email already registered: %w", domain.ErrConflict))

	_, err := newTestService(users, tokens).Register(context.Background(), domain.RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	users, tokens := new(mockUserStore), new(mockTokens)
	u := &domain.User{UserID: "u1", Name: "Ada", Email: "ada@example.com", PasswordHash: hashed(t, "secret1")}
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(u, nil)
	tokens.On("Sign", "u1").Return("tok", nil)

	res, err := newTestService(users, tokens).Login(context.Background(), domain.LoginRequest{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, "u1", res.User.ID)
}

func TestLogin_UnknownEmailAndWrongPasswordLookIdentical(t *testing.T) {
	users, tokens := new(mockUserStore), new(mockTokens)
	u := &domain.User{UserID: "u1", Email: "ada@example.com", PasswordHash: hashed(t, "secret1")}
	users.On("GetByEmail", mock.Anything, "ada@example.com").Return(u, nil)
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, domain.ErrNotFound)
	svc := newTestService(users, tokens)

	_, wrongPw := svc.Login(context.Background(), domain.LoginRequest{Email: "ada@example.com", Password: "nope"})
	_, unknown := svc.Login(context.Background(), domain.LoginRequest{Email: "nobody@example.com", Password: "nope"})

	assert.ErrorIs(t, wrongPw, domain.ErrUnauthorized)
	assert.ErrorIs(t, unknown, domain.ErrUnauthorized)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
	assert.NotEmpty(t, svc.dummyHash)
	tokens.AssertNotCalled(t, "Sign", mock.Anything)
}

func TestLogin_StoreFailureIsNotUnauthorized(t *testing.T) {
	users, tokens := new(mockUserStore), new(mockTokens)
	users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := newTestService(users, tokens).Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}

// --- Authenticate ---

func TestAuthenticate(t *testing.T) {
	users, tokens := new(mockUserStore), new(mockTokens)
	u := &domain.User{UserID: "u1"}
	tokens.On("Verify", "good").Return(&jwtinfra.Claims{UserID: "u1"}, nil)
	tokens.On("Verify", "orphan").Return(&jwtinfra.Claims{UserID: "gone"}, nil)
	tokens.On("Verify", "bad").Return(nil, errors.New("signature is invalid"))
	users.On("GetByID", mock.Anything, "u1").Return(u, nil)
	users.On("GetByID", mock.Anything, "gone").Return(nil, domain.ErrNotFound)
	svc := newTestService(users, tokens)

	got, err := svc.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.Same(t, u, got)

	_, err = svc.Authenticate(context.Background(), "orphan")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "bad")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
