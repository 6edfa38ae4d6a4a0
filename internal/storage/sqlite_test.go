package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLite(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestNewSQLite_EmptyPath(t *testing.T) {
	store, err := NewSQLite("")
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "storage path not set")
}

func TestNewSQLite_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "chat.db")

	store, err := NewSQLite(path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Set("probe", "value"))
}

func TestSQLiteStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set(KeySessionID, "session-123"))

	value, found, err := store.Get(KeySessionID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "session-123", value)
}

func TestSQLiteStore_GetMissingKey(t *testing.T) {
	store := newTestStore(t)

	value, found, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestSQLiteStore_SetOverwrites(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set(KeyConversationID, "conv-1"))
	require.NoError(t, store.Set(KeyConversationID, "conv-2"))

	value, found, err := store.Get(KeyConversationID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "conv-2", value)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set(KeySessionID, "session-123"))
	require.NoError(t, store.Delete(KeySessionID))

	_, found, err := store.Get(KeySessionID)
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting an absent key is not an error
	require.NoError(t, store.Delete(KeySessionID))
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")

	store, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeySessionID, "session-before-reload"))
	require.NoError(t, store.Close())

	// Reopen the same file, simulating an application restart
	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	value, found, err := reopened.Get(KeySessionID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "session-before-reload", value)
}

func TestSQLiteStore_QueryErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := newSQLiteFromDB(sqlx.NewDb(db, "sqlite"))

	mock.ExpectQuery("SELECT value FROM kv").WillReturnError(sql.ErrConnDone)
	_, _, err = store.Get(KeySessionID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read key")

	mock.ExpectExec("INSERT INTO kv").WillReturnError(sql.ErrConnDone)
	err = store.Set(KeySessionID, "value")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write key")

	mock.ExpectExec("DELETE FROM kv").WillReturnError(sql.ErrConnDone)
	err = store.Delete(KeySessionID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete key")

	assert.NoError(t, mock.ExpectationsWereMet())
}
