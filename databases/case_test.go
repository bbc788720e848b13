package databases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/ai-court-api/databases"
	"github.com/linesmerrill/ai-court-api/models"
)

func resolvedCase(id, owner string, created time.Time) models.Case {
	return models.Case{
		ID:        id,
		Title:     "Case " + id,
		Plaintiff: "p",
		Defendant: "d",
		OwnerID:   owner,
		CreatedAt: created,
		State:     models.Resolved{Verdict: models.Verdict{Winner: "Plaintiff", Reasoning: "because", Confidence: "High"}},
	}
}

func TestCaseDatabase_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	db := databases.NewCaseDatabase(databases.NewMemoryStore())
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, db.InsertOne(ctx, resolvedCase("a", "u1", now)))

	got, err := db.FindOne(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Case a", got.Title)
	v, ok := got.Verdict()
	assert.True(t, ok)
	assert.Equal(t, "Plaintiff", v.Winner)
}

func TestCaseDatabase_FindOneNotFound(t *testing.T) {
	db := databases.NewCaseDatabase(databases.NewMemoryStore())

	_, err := db.FindOne(context.Background(), "missing")

	var nf *models.NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, "case missing not found", err.Error())
}

func TestCaseDatabase_FindByOwnerNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := databases.NewCaseDatabase(databases.NewMemoryStore())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertOne(ctx, resolvedCase("old", "u1", base)))
	require.NoError(t, db.InsertOne(ctx, resolvedCase("other", "u2", base.Add(time.Hour))))
	require.NoError(t, db.InsertOne(ctx, resolvedCase("new", "u1", base.Add(2*time.Hour))))

	cases, err := db.FindByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "new", cases[0].ID)
	assert.Equal(t, "old", cases[1].ID)

	all, err := db.FindByOwner(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCaseDatabase_Stats(t *testing.T) {
	ctx := context.Background()
	store := databases.NewMemoryStore()
	db := databases.NewCaseDatabase(store)

	stats, err := db.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.CaseStats{}, stats)

	require.NoError(t, db.InsertOne(ctx, resolvedCase("a", "u1", time.Now())))
	require.NoError(t, db.InsertOne(ctx, models.Case{ID: "b", Title: "t", Plaintiff: "p", Defendant: "d", OwnerID: "u1", CreatedAt: time.Now(), State: models.Pending{}}))

	stats, err = db.Stats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.CaseStats{Total: 2, Pending: 1, Completed: 1}, stats)
}

func TestCaseDatabase_CorruptCollection(t *testing.T) {
	ctx := context.Background()
	store := databases.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "cases", []byte(`{"not":"a list"}`)))

	_, err := databases.NewCaseDatabase(store).FindByOwner(ctx, "")
	assert.Error(t, err)
}
