package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/mediashare/internal/auth"
	"github.com/joestump/mediashare/internal/store"
	"github.com/joestump/mediashare/internal/testutil"
)

func TestProvisionAdmin_Creates(t *testing.T) {
	users := store.NewUserStore(testutil.NewTestDB(t))
	ctx := context.Background()

	u, created, err := provisionAdmin(ctx, users, "root@example.com", "Root", "correct-horse")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, u.IsAdmin)
	assert.NoError(t, auth.CheckPassword(u.PasswordHash, "correct-horse"))
}

func TestProvisionAdmin_PromotesExisting(t *testing.T) {
	users := store.NewUserStore(testutil.NewTestDB(t))
	ctx := context.Background()

	existing, err := users.Create(ctx, store.NewUser{Email: "jo@example.com", Name: "Jo"})
	require.NoError(t, err)
	_, err = users.SetActive(ctx, existing.ID, false)
	require.NoError(t, err)

	u, created, err := provisionAdmin(ctx, users, "JO@example.com", "ignored", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, u.ID)
	assert.True(t, u.IsAdmin)
	assert.True(t, u.IsActive)
	assert.Equal(t, "Jo", u.Name)
}

func TestProvisionAdmin_Errors(t *testing.T) {
	users := store.NewUserStore(testutil.NewTestDB(t))
	ctx := context.Background()

	_, _, err := provisionAdmin(ctx, users, "  ", "", "correct-horse")
	assert.Error(t, err)
	_, _, err = provisionAdmin(ctx, users, "new@example.com", "New", "")
	assert.Error(t, err, "a new account needs a password")
	_, _, err = provisionAdmin(ctx, users, "new@example.com", "New", "short")
	assert.Error(t, err)
}
