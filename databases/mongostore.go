package databases

// go generate: mockery --name CollectionHelper

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const keyValueName = "keyvalues"

// keyValueDocument holds the structure for the keyvalues collection in mongo
type keyValueDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type mongoStore struct {
	db DatabaseHelper
}

// NewMongoStore initializes a key/value store on the keyvalues collection with
// the provided db connection
func NewMongoStore(db DatabaseHelper) KeyValueStore {
	return &mongoStore{
		db: db,
	}
}

func (m *mongoStore) find(ctx context.Context, key string) (*keyValueDocument, error) {
	doc := &keyValueDocument{}
	err := m.db.Collection(keyValueName).FindOne(ctx, bson.M{"_id": key}).Decode(doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *mongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	doc, err := m.find(ctx, key)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(doc.Value), true, nil
}

func (m *mongoStore) Set(ctx context.Context, key string, value []byte) error {
	return m.Update(ctx, key, func([]byte, bool) ([]byte, error) {
		return value, nil
	})
}

// Update is an optimistic compare-and-set on the document version. A writer that
// lost the race re-reads and re-applies fn.
func (m *mongoStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		doc, err := m.find(ctx, key)
		found := true
		if errors.Is(err, mongo.ErrNoDocuments) {
			found = false
			doc = &keyValueDocument{Key: key}
		} else if err != nil {
			return err
		}

		var current []byte
		if found {
			current = []byte(doc.Value)
		}
		next, err := fn(current, found)
		if err != nil || next == nil {
			return err
		}

		now := time.Now().UTC()
		if !found {
			_, err = m.db.Collection(keyValueName).InsertOne(ctx, keyValueDocument{
				Key:       key,
				Value:     string(next),
				Version:   1,
				UpdatedAt: now,
			})
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return err
		}

		res, err := m.db.Collection(keyValueName).UpdateOne(ctx,
			bson.M{"_id": key, "version": doc.Version},
			bson.M{
				"$set": bson.M{"value": string(next), "updatedAt": now},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 1 {
			return nil
		}
	}
	return ErrConflict
}

func (m *mongoStore) Delete(ctx context.Context, key string) error {
	return m.db.Collection(keyValueName).DeleteOne(ctx, bson.M{"_id": key})
}
