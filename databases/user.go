package databases

// go generate: mockery --name UserDatabase

import (
	"context"
	"strings"

	"github.com/linesmerrill/ai-court-api/models"
)

const userKey = "user"

func userEmailKey(email string) string {
	return "user_email_" + strings.ToLower(strings.TrimSpace(email))
}

// UserDatabase contains the methods to use with the demo session users
type UserDatabase interface {
	// FindOne returns the user stored in the session of clientID
	FindOne(ctx context.Context, clientID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	InsertOne(ctx context.Context, user models.User) error
	DeleteOne(ctx context.Context, clientID string) error
}

type userDatabase struct {
	store KeyValueStore
}

// NewUserDatabase initializes a new instance of user database with the provided store
func NewUserDatabase(store KeyValueStore) UserDatabase {
	return &userDatabase{
		store: store,
	}
}

func (u *userDatabase) FindOne(ctx context.Context, clientID string) (*models.User, error) {
	user := &models.User{}
	found, err := GetJSON(ctx, Scoped(u.store, clientID), userKey, user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &models.NotFoundError{Kind: "user", ID: clientID}
	}
	return user, nil
}

func (u *userDatabase) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	found, err := GetJSON(ctx, u.store, userEmailKey(email), user)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &models.NotFoundError{Kind: "user", ID: email}
	}
	return user, nil
}

// InsertOne stores the user in its own session and indexes it by email so a
// returning login keeps the same id
func (u *userDatabase) InsertOne(ctx context.Context, user models.User) error {
	if err := SetJSON(ctx, u.store, userEmailKey(user.Email), user); err != nil {
		return err
	}
	return SetJSON(ctx, Scoped(u.store, user.ID), userKey, user)
}

func (u *userDatabase) DeleteOne(ctx context.Context, clientID string) error {
	return Scoped(u.store, clientID).Delete(ctx, userKey)
}
