package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"datacatalog/internal/core/security"
	"datacatalog/internal/domain/auth"
	"datacatalog/internal/infrastructure/storage/memory"
)

func TestRun_SeedsEmptyStore(t *testing.T) {
	store := memory.New()
	s := New(store.Users(), store.Tags(), store, bcrypt.MinCost)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	require.Len(t, res.Users, 2)
	assert.Len(t, res.Tags, len(DefaultTags))

	admin, err := store.Users().GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, security.RoleAdmin, admin.Role)
	require.NotNil(t, admin.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*admin.PasswordHash), []byte(DefaultPassword)))

	tags, err := store.Tags().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, tags, len(DefaultTags))
}

func TestRun_SkipsWhenUsersExist(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Users().Create(context.Background(),
		auth.NewUser("someone@example.com", "", "", security.RoleUser)))

	res, err := New(store.Users(), store.Tags(), store, bcrypt.MinCost).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	tags, err := store.Tags().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tags)
}
