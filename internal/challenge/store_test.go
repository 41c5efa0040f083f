package challenge

import (
	"database/sql"
	"testing"

	"github.com/courtline/ladder/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (Store, *sql.DB, func()) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	for _, p := range [][2]string{{"p1", "Anna"}, {"p2", "Bo"}} {
		_, err := db.Exec("INSERT INTO players (id, name) VALUES (?, ?)", p[0], p[1])
		require.NoError(t, err)
	}
	return NewStore(db), db, teardown
}

func TestCreateAndGet(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	c, err := store.Create("p1", "p2")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, StatusOpen, c.Status)

	got, err := store.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ChallengerID)
	assert.Equal(t, "p2", got.OpponentID)
	assert.Equal(t, StatusOpen, got.Status)

	_, err = store.Get("missing")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	_, err := store.Create("p1", "p2")
	require.NoError(t, err)
	_, err = store.Create("p2", "p1")
	require.NoError(t, err)

	challenges, err := store.List()
	require.NoError(t, err)
	assert.Len(t, challenges, 2)
}

func TestTransitions(t *testing.T) {
	t.Run("accept an open challenge", func(t *testing.T) {
		store, _, teardown := setupTestStore(t)
		defer teardown()

		c, err := store.Create("p1", "p2")
		require.NoError(t, err)

		require.NoError(t, store.Accept(c.ID))
		got, err := store.Get(c.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, got.Status)

		// Accepting twice is not a valid transition.
		assert.Error(t, store.Accept(c.ID))
	})

	t.Run("complete straight from open", func(t *testing.T) {
		store, _, teardown := setupTestStore(t)
		defer teardown()

		c, err := store.Create("p1", "p2")
		require.NoError(t, err)

		require.NoError(t, store.Complete(c.ID))
		got, err := store.Get(c.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, got.Status)
	})

	t.Run("complete after accept", func(t *testing.T) {
		store, _, teardown := setupTestStore(t)
		defer teardown()

		c, err := store.Create("p1", "p2")
		require.NoError(t, err)

		require.NoError(t, store.Accept(c.ID))
		require.NoError(t, store.Complete(c.ID))
	})

	t.Run("cancel blocks completion", func(t *testing.T) {
		store, _, teardown := setupTestStore(t)
		defer teardown()

		c, err := store.Create("p1", "p2")
		require.NoError(t, err)

		require.NoError(t, store.Cancel(c.ID))
		err = store.Complete(c.ID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot transition")
	})

	t.Run("unknown challenge cannot transition", func(t *testing.T) {
		store, _, teardown := setupTestStore(t)
		defer teardown()

		assert.Error(t, store.Accept("missing"))
	})
}
