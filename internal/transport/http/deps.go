package http

import (
	"context"

	"github.com/go-notify-api/internal/application/notification"
	"github.com/go-notify-api/internal/domain"
	jwtinfra "github.com/go-notify-api/internal/infrastructure/jwt"
	"github.com/rs/zerolog"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// Deps holds all infrastructure dependencies for the router.
// Cache and Events may be nil; the features they back are then disabled.
type Deps struct {
	Users         UserRepository
	Notifications notification.Store
	Cache         notification.Cache
	Events        notification.Publisher
	JWTProvider   *jwtinfra.Provider
	Logger        zerolog.Logger
}
