package directory

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the provider record store.
type Repository interface {
	Create(ctx context.Context, p *Provider) error
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	Update(ctx context.Context, p *Provider) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Search returns one page of matches plus the total match count for the
	// same criteria.
	Search(ctx context.Context, sc SearchCriteria, limit, offset int) ([]*Provider, int, error)
	// FindByIDs fetches a batch of providers keyed by id. IDs with no record
	// are simply absent from the result map.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Provider, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// UpdateRating overwrites the derived rating aggregate.
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error
}
