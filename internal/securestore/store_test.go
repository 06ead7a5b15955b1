package securestore

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSQLiteStore(t *testing.T, secret string) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"), secret)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t, "")
	ctx := context.Background()

	assert.Empty(t, store.Get(ctx, KeyAuthToken))

	store.Set(ctx, KeyAuthToken, "tok-123")
	assert.Equal(t, "tok-123", store.Get(ctx, KeyAuthToken))

	store.Set(ctx, KeyAuthToken, "tok-456")
	assert.Equal(t, "tok-456", store.Get(ctx, KeyAuthToken))

	store.Delete(ctx, KeyAuthToken)
	assert.Empty(t, store.Get(ctx, KeyAuthToken))
}

func TestSQLiteStore_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t, "")
	ctx := context.Background()

	store.Set(ctx, KeyAuthToken, "tok")
	store.Set(ctx, KeyUserData, `{"id":7}`)
	store.Delete(ctx, KeyAuthToken)

	assert.Empty(t, store.Get(ctx, KeyAuthToken))
	assert.Equal(t, `{"id":7}`, store.Get(ctx, KeyUserData))
}

func TestSQLiteStore_DeleteAbsentKeyIsNoOp(t *testing.T) {
	t.Parallel()

	store := newSQLiteStore(t, "")
	require.NotPanics(t, func() {
		store.Delete(context.Background(), KeyUserData)
	})
}

func TestSQLiteStore_SealedAtRest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.db")
	store, err := NewSQLiteStore(path, "device-secret")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	store.Set(ctx, KeyAuthToken, "tok-secret-value")
	require.Equal(t, "tok-secret-value", store.Get(ctx, KeyAuthToken))

	// read the raw row: the plaintext token must not be stored
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	var raw entry
	require.NoError(t, db.Where("key = ?", KeyAuthToken).First(&raw).Error)

	assert.NotEqual(t, "tok-secret-value", raw.Value)
	assert.NotContains(t, raw.Value, "tok-secret-value")
	_, err = base64.StdEncoding.DecodeString(raw.Value)
	assert.NoError(t, err)
}

func TestSQLiteStore_WrongSecretReadsEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.db")
	store, err := NewSQLiteStore(path, "secret-a")
	require.NoError(t, err)
	store.Set(context.Background(), KeyAuthToken, "tok")
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, "secret-b")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	assert.Empty(t, reopened.Get(context.Background(), KeyAuthToken))
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.db")
	store, err := NewSQLiteStore(path, "device-secret")
	require.NoError(t, err)
	store.Set(context.Background(), KeyAuthToken, "tok-persisted")
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, "device-secret")
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	assert.Equal(t, "tok-persisted", reopened.Get(context.Background(), KeyAuthToken))
}

func TestMemoryStore_FailAllSwallowsEverything(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, KeyAuthToken, "tok")

	store.FailAll = true
	require.NotPanics(t, func() {
		store.Set(ctx, KeyUserData, "x")
		store.Delete(ctx, KeyAuthToken)
	})
	assert.Empty(t, store.Get(ctx, KeyAuthToken))

	store.FailAll = false
	assert.Equal(t, "tok", store.Get(ctx, KeyAuthToken))
}
