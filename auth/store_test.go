package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pcerrors "github.com/SuyashBhavalkar3/posturecoach/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreCreateAndLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, "Alice", "Alice@Example.com", []byte("hash"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, "alice@example.com", created.Email)

	byEmail, err := store.UserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, []byte("hash"), byEmail.PasswordHash)

	// Lookup normalizes case and whitespace the same way create does.
	byMixedCase, err := store.UserByEmail(ctx, "  ALICE@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byMixedCase.ID)

	byID, err := store.UserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
}

func TestStoreDuplicateEmail(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "Alice", "alice@example.com", []byte("hash"))
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, "Alice Again", "ALICE@example.com", []byte("other"))
	assert.ErrorIs(t, err, pcerrors.ErrEmailTaken)
}

func TestStoreNotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.UserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, pcerrors.ErrUserNotFound)

	_, err = store.UserByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, pcerrors.ErrUserNotFound)
}

func TestStoreRequiresPath(t *testing.T) {
	_, err := OpenStore("  ")
	assert.Error(t, err)
}
