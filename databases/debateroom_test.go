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

func TestDebateRoomDatabase_Register(t *testing.T) {
	ctx := context.Background()
	db := databases.NewDebateRoomDatabase(databases.NewMemoryStore())
	entry := models.RoomRegistryEntry{RoomCode: "123456", CaseTitle: "Fence", CreatedAt: time.Now().UTC()}

	ok, err := db.Register(ctx, entry)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.Register(ctx, entry)
	assert.NoError(t, err)
	assert.False(t, ok)

	entries, err := db.Registry(ctx)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDebateRoomDatabase_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	db := databases.NewDebateRoomDatabase(databases.NewMemoryStore())
	room := &models.DebateRoom{RoomCode: "123456", CaseTitle: "Fence", CreatorRole: models.RolePlaintiff}

	require.NoError(t, db.Create(ctx, room))
	assert.Error(t, db.Create(ctx, room))

	got, err := db.FindOne(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusWaiting, got.Status)
	assert.NotNil(t, got.Chat)
	assert.NotNil(t, got.Events)
}

func TestDebateRoomDatabase_FindOneNotFound(t *testing.T) {
	db := databases.NewDebateRoomDatabase(databases.NewMemoryStore())

	_, err := db.FindOne(context.Background(), "000000")

	var nf *models.NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, "debate room", nf.Kind)
}

func TestDebateRoomDatabase_Update(t *testing.T) {
	ctx := context.Background()
	db := databases.NewDebateRoomDatabase(databases.NewMemoryStore())
	require.NoError(t, db.Create(ctx, &models.DebateRoom{RoomCode: "123456", Status: models.RoomStatusWaiting}))

	updated, err := db.Update(ctx, "123456", func(room *models.DebateRoom) (bool, error) {
		room.Status = models.RoomStatusInProgress
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusInProgress, updated.Status)

	// an unchanged update still returns the current room
	same, err := db.Update(ctx, "123456", func(room *models.DebateRoom) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusInProgress, same.Status)

	boom := errors.New("boom")
	_, err = db.Update(ctx, "123456", func(room *models.DebateRoom) (bool, error) {
		room.Status = models.RoomStatusCompleted
		return true, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := db.FindOne(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusInProgress, got.Status)
}

func TestDebateRoomDatabase_UpdateMissingRoom(t *testing.T) {
	db := databases.NewDebateRoomDatabase(databases.NewMemoryStore())

	_, err := db.Update(context.Background(), "999999", func(room *models.DebateRoom) (bool, error) {
		return true, nil
	})

	var nf *models.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestDebateRoomDatabase_RoleIsPerClient(t *testing.T) {
	ctx := context.Background()
	db := databases.NewDebateRoomDatabase(databases.NewMemoryStore())

	require.NoError(t, db.SetRole(ctx, "client-a", "123456", models.RolePlaintiff))

	role, err := db.Role(ctx, "client-a", "123456")
	assert.NoError(t, err)
	assert.Equal(t, models.RolePlaintiff, role)

	role, err = db.Role(ctx, "client-b", "123456")
	assert.NoError(t, err)
	assert.Equal(t, models.Role(""), role)
}
