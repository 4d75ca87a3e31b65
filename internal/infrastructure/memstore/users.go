package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-notify-api/internal/domain"
)

// UserRepo is a mutex-guarded in-process user store.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: map[string]domain.User{}, byEmail: map[string]string{}}
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	r.byID[u.UserID] = *u
	r.byEmail[u.Email] = u.UserID
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	userID, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return r.GetByID(ctx, userID)
}

func (r *UserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}
