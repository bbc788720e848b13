package databases

// go generate: mockery --name CaseDatabase

import (
	"context"
	"sort"

	"github.com/linesmerrill/ai-court-api/models"
)

const casesKey = "cases"

// CaseDatabase contains the methods to use with the cases collection
type CaseDatabase interface {
	InsertOne(ctx context.Context, c models.Case) error
	FindOne(ctx context.Context, id string) (*models.Case, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.Case, error)
	Stats(ctx context.Context, ownerID string) (models.CaseStats, error)
}

type caseDatabase struct {
	store KeyValueStore
}

// NewCaseDatabase initializes a new instance of case database with the provided store
func NewCaseDatabase(store KeyValueStore) CaseDatabase {
	return &caseDatabase{
		store: store,
	}
}

// InsertOne appends the case to the collection in one atomic update
func (c *caseDatabase) InsertOne(ctx context.Context, cs models.Case) error {
	return UpdateJSON(ctx, c.store, casesKey, func(cases *[]models.Case, _ bool) (bool, error) {
		*cases = append(*cases, cs)
		return true, nil
	})
}

func (c *caseDatabase) all(ctx context.Context) ([]models.Case, error) {
	var cases []models.Case
	if _, err := GetJSON(ctx, c.store, casesKey, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func (c *caseDatabase) FindOne(ctx context.Context, id string) (*models.Case, error) {
	cases, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cases {
		if cases[i].ID == id {
			return &cases[i], nil
		}
	}
	return nil, &models.NotFoundError{Kind: "case", ID: id}
}

// FindByOwner returns the owner's cases newest first. An empty ownerID matches every case.
func (c *caseDatabase) FindByOwner(ctx context.Context, ownerID string) ([]models.Case, error) {
	cases, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]models.Case, 0, len(cases))
	for _, cs := range cases {
		if ownerID == "" || cs.OwnerID == ownerID {
			owned = append(owned, cs)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned, nil
}

func (c *caseDatabase) Stats(ctx context.Context, ownerID string) (models.CaseStats, error) {
	cases, err := c.FindByOwner(ctx, ownerID)
	if err != nil {
		return models.CaseStats{}, err
	}
	stats := models.CaseStats{Total: len(cases)}
	for _, cs := range cases {
		if cs.IsResolved() {
			stats.Completed++
		} else {
			stats.Pending++
		}
	}
	return stats, nil
}
