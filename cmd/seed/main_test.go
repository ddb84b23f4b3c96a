package main

import (
	"context"
	"testing"
	"time"

	"county-task-api/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	saved  []entity.User
	exists bool
}

func (f *fakeUserStore) ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error) {
	return f.exists, nil
}

func (f *fakeUserStore) Save(ctx context.Context, user entity.User) (int64, error) {
	f.saved = append(f.saved, user)
	return int64(len(f.saved)), nil
}

func TestSeedAdminCreatesAccount(t *testing.T) {
	store := &fakeUserStore{}

	created, err := seedAdmin(context.Background(), store, time.UTC, "admin", "Admin@CiviSight.org", "Sup3r$ecret")

	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, store.saved, 1)

	user := store.saved[0]
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "admin@civisight.org", user.Email)
	assert.Equal(t, entity.RoleAdmin, user.Role)
	assert.Nil(t, user.CountyID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Sup3r$ecret")))
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	store := &fakeUserStore{exists: true}

	created, err := seedAdmin(context.Background(), store, time.UTC, "admin", "admin@civisight.org", "Sup3r$ecret")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, store.saved)
}
