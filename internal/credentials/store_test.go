package credentials

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/autopost/autopost/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "creds.db")
	store, err := NewStore(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	t.Run("creates directory and database", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "subdir", "creds.db")

		ctx := context.Background()
		store, err := NewStore(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		_, err = os.Stat(dbPath)
		assert.NoError(t, err)
	})

	t.Run("reopening runs migrations only once", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "creds.db")
		ctx := context.Background()

		store, err := NewStore(ctx, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.SetToken(ctx, platform.X, "tok"))
		require.NoError(t, store.Close())

		store, err = NewStore(ctx, dbPath)
		require.NoError(t, err)
		defer store.Close()

		token, err := store.Token(ctx, platform.X)
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
	})
}

func TestStore_Tokens(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("missing token is empty, not an error", func(t *testing.T) {
		token, err := store.Token(ctx, platform.LinkedIn)
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.SetToken(ctx, platform.LinkedIn, "li-token"))
		token, err := store.Token(ctx, platform.LinkedIn)
		require.NoError(t, err)
		assert.Equal(t, "li-token", token)
	})

	t.Run("tokens are per platform", func(t *testing.T) {
		require.NoError(t, store.SetToken(ctx, platform.X, "x-token"))

		liToken, err := store.Token(ctx, platform.LinkedIn)
		require.NoError(t, err)
		xToken, err := store.Token(ctx, platform.X)
		require.NoError(t, err)

		assert.Equal(t, "li-token", liToken)
		assert.Equal(t, "x-token", xToken)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.SetToken(ctx, platform.X, "x-token-2"))
		token, err := store.Token(ctx, platform.X)
		require.NoError(t, err)
		assert.Equal(t, "x-token-2", token)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteToken(ctx, platform.X))
		token, err := store.Token(ctx, platform.X)
		require.NoError(t, err)
		assert.Empty(t, token)
	})
}

func TestStore_Session(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("missing session", func(t *testing.T) {
		_, err := store.Session(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.SetSession(ctx, Session{
			ID:     "sess-123",
			Email:  "ada@example.com",
			Status: platform.SubstackAwaitingVerification,
		}))

		sess, err := store.Session(ctx)
		require.NoError(t, err)
		assert.Equal(t, "sess-123", sess.ID)
		assert.Equal(t, "ada@example.com", sess.Email)
		assert.Equal(t, platform.SubstackAwaitingVerification, sess.Status)
	})

	t.Run("overwrite keeps a single row", func(t *testing.T) {
		require.NoError(t, store.SetSession(ctx, Session{
			ID:     "sess-456",
			Email:  "ada@example.com",
			Name:   "Ada",
			Status: platform.SubstackLoggedIn,
		}))

		sess, err := store.Session(ctx)
		require.NoError(t, err)
		assert.Equal(t, "sess-456", sess.ID)
		assert.Equal(t, platform.SubstackLoggedIn, sess.Status)
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, store.ClearSession(ctx))
		_, err := store.Session(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
