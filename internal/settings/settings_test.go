package settings

import (
	"database/sql"
	"testing"

	"github.com/leanbb/leanbb/internal/database"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Setup(db, "seed-hash"))

	return New(db), db
}

func TestGetFallsBackToDefault(t *testing.T) {
	store, _ := newStore(t)

	assert.Equal(t, "LeanBB", store.Get("site_title", "fallback"))
	assert.Equal(t, "fallback", store.Get("no_such_key", "fallback"))
}

func TestSetIsVisibleToSubsequentReads(t *testing.T) {
	store, db := newStore(t)

	require.NoError(t, store.Set("site_title", "My Forum"))
	assert.Equal(t, "My Forum", store.Get("site_title", ""))

	// persisted, not just cached
	values, err := database.GetSettings(db)
	require.NoError(t, err)
	assert.Equal(t, "My Forum", values["site_title"])
}

func TestSetAllUpdatesCacheAndTable(t *testing.T) {
	store, db := newStore(t)

	// warm the cache first so the write path must refresh it
	assert.Equal(t, "1", store.Get("allow_registration", ""))

	require.NoError(t, store.SetAll(map[string]string{
		"allow_registration": "0",
		"site_title":         "Closed Forum",
	}))

	assert.Equal(t, "0", store.Get("allow_registration", ""))
	assert.Equal(t, "Closed Forum", store.Get("site_title", ""))

	values, err := database.GetSettings(db)
	require.NoError(t, err)
	assert.Equal(t, "0", values["allow_registration"])
}
