package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/ai-court-api/databases"
	"github.com/linesmerrill/ai-court-api/models"
)

func TestUserDatabase(t *testing.T) {
	ctx := context.Background()
	db := databases.NewUserDatabase(databases.NewMemoryStore())
	user := models.User{Email: "Judy@Example.com", ID: "u-1"}

	_, err := db.FindOne(ctx, "u-1")
	var nf *models.NotFoundError
	assert.True(t, errors.As(err, &nf))

	require.NoError(t, db.InsertOne(ctx, user))

	got, err := db.FindOne(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, user, *got)

	byEmail, err := db.FindByEmail(ctx, " judy@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byEmail.ID)

	require.NoError(t, db.DeleteOne(ctx, "u-1"))
	_, err = db.FindOne(ctx, "u-1")
	assert.Error(t, err)

	// the email index survives a logout so the next login reuses the id
	_, err = db.FindByEmail(ctx, "judy@example.com")
	assert.NoError(t, err)
}
