package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the appointment record store.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// GetByIdempotencyKey returns the appointment a previous submission with
	// this key created, or a not found error.
	GetByIdempotencyKey(ctx context.Context, key string) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	// List returns one page ordered newest first plus the total match count.
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
}
