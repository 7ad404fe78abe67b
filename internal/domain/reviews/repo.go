package reviews

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the review record store.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	// List returns one filtered page newest first plus the total count.
	List(ctx context.Context, f Filter, limit, offset int) ([]*Review, int, error)
	// Aggregate computes the mean rating and review count over every review
	// the provider has. The mean is unrounded.
	Aggregate(ctx context.Context, providerID uuid.UUID) (float64, int, error)
}
