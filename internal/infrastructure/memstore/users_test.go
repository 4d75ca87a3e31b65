package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/go-notify-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo(t *testing.T) {
	r := NewUserRepo()
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &domain.User{UserID: "u1", Email: "a@b.com", Name: "A"}))
	err := r.Create(ctx, &domain.User{UserID: "u2", Email: "a@b.com"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	exists, err := r.ExistsByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, exists)

	u, err := r.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)

	_, err = r.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
