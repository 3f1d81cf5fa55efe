package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	return store
}

func TestSessionSaveAndHydrate(t *testing.T) {
	store := newTestStore(t)

	session := &Session{
		Token:     "token-123",
		Username:  "Jane Doe",
		Email:     "jane.doe@rigaku.com",
		IsAdmin:   true,
		ExpiresAt: time.Now().Add(24 * time.Hour).UTC(),
	}
	require.NoError(t, store.Save(session))

	got, err := store.Hydrate()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session.Token, got.Token)
	assert.Equal(t, session.Username, got.Username)
	assert.True(t, got.IsAdmin)
}

func TestSessionFilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&Session{Token: "token-123"}))

	info, err := os.Stat(store.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestHydrateMissingFile(t *testing.T) {
	store := newTestStore(t)

	session, err := store.Hydrate()
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestHydrateCorruptFileClearsStorage(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0o600))

	session, err := store.Hydrate()
	require.NoError(t, err)
	assert.Nil(t, session, "corrupt session starts unauthenticated")

	_, statErr := os.Stat(store.path)
	assert.True(t, os.IsNotExist(statErr), "corrupt file must be removed")
}

func TestHydrateEmptyTokenTreatedAsCorrupt(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte(`{"username":"Jane"}`), 0o600))

	session, err := store.Hydrate()
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&Session{Token: "token-123"}))

	require.NoError(t, store.Clear())
	session, err := store.Hydrate()
	require.NoError(t, err)
	assert.Nil(t, session)

	// Clearing twice is fine.
	assert.NoError(t, store.Clear())
}

func TestClearPasswordChangeRequirement(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&Session{Token: "token-123", RequirePasswordChange: true}))

	require.NoError(t, store.ClearPasswordChangeRequirement())

	session, err := store.Hydrate()
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.False(t, session.RequirePasswordChange)
	assert.Equal(t, "token-123", session.Token, "the rest of the session survives")
}

func TestResolveState(t *testing.T) {
	assert.Equal(t, StateLoading, ResolveState(false, nil))
	assert.Equal(t, StateLogin, ResolveState(true, nil))
	assert.Equal(t, StatePasswordChange, ResolveState(true, &Session{Token: "t", RequirePasswordChange: true}))
	assert.Equal(t, StateDashboard, ResolveState(true, &Session{Token: "t"}))
}
