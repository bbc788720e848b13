package databases_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/ai-court-api/databases"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	store := databases.NewMemoryStore()

	_, found, err := store.Get(ctx, "user")
	assert.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "user", []byte(`{"email":"a@b.c","id":"1"}`)))
	v, found, err := store.Get(ctx, "user")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"email":"a@b.c","id":"1"}`, string(v))

	require.NoError(t, store.Delete(ctx, "user"))
	_, found, _ = store.Get(ctx, "user")
	assert.False(t, found)
}

func TestGetJSONKeepsDefaultWhenMissing(t *testing.T) {
	store := databases.NewMemoryStore()

	rooms := []string{"default"}
	found, err := databases.GetJSON(context.Background(), store, "debateRooms", &rooms)

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, []string{"default"}, rooms)
}

func TestGetJSONRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	store := databases.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "cases", []byte(`not json`)))

	var cases []string
	_, err := databases.GetJSON(ctx, store, "cases", &cases)
	assert.Error(t, err)
}

func TestUpdateJSONIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := databases.NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := databases.UpdateJSON(ctx, store, "counter", func(n *int, _ bool) (bool, error) {
				*n++
				return true, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var n int
	_, err := databases.GetJSON(ctx, store, "counter", &n)
	assert.NoError(t, err)
	assert.Equal(t, 50, n)
}

func TestUpdateJSONErrorAbortsWrite(t *testing.T) {
	ctx := context.Background()
	store := databases.NewMemoryStore()
	require.NoError(t, databases.SetJSON(ctx, store, "counter", 7))

	boom := errors.New("boom")
	err := databases.UpdateJSON(ctx, store, "counter", func(n *int, _ bool) (bool, error) {
		*n = 100
		return true, boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	_, _ = databases.GetJSON(ctx, store, "counter", &n)
	assert.Equal(t, 7, n)
}

func TestScopedStoreIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	store := databases.NewMemoryStore()

	alice := databases.Scoped(store, "alice")
	bob := databases.Scoped(store, "bob")

	require.NoError(t, databases.SetJSON(ctx, alice, "debate_123456_role", "plaintiff"))

	var role string
	found, err := databases.GetJSON(ctx, bob, "debate_123456_role", &role)
	assert.NoError(t, err)
	assert.False(t, found)

	found, err = databases.GetJSON(ctx, alice, "debate_123456_role", &role)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "plaintiff", role)

	_, found, _ = store.Get(ctx, "debate_123456_role")
	assert.False(t, found)
}
