package patients

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the patient record store.
type Repository interface {
	// Create inserts a new patient and fails with a conflict when the email
	// is already taken.
	Create(ctx context.Context, p *Patient) error
	// Upsert writes the identity in one statement: it inserts a new patient
	// or, when the email already has a record, refreshes that record's
	// fields. Either way the patient behind the email comes back.
	Upsert(ctx context.Context, id Identity) (*Patient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, email string, limit, offset int) ([]*Patient, int, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Patient, error)
}
