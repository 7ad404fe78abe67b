package reviews

import (
	"time"

	"github.com/google/uuid"
)

// Review is one stored rating with its optional comment.
type Review struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	ProviderID    uuid.UUID  `db:"provider_id" json:"provider_id"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Rating        int        `db:"rating" json:"rating"`
	Comment       *string    `db:"comment" json:"comment,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Input is one review submission.
type Input struct {
	ProviderID    uuid.UUID  `json:"provider_id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Rating        int        `json:"rating"`
	Comment       *string    `json:"comment,omitempty"`
}

// EnrichedReview is one listing row with the reviewer's name attached.
type EnrichedReview struct {
	Review
	PatientName string `json:"patient_name"`
}

// Filter narrows a review listing. Zero values are inactive.
type Filter struct {
	ProviderID uuid.UUID
	PatientID  uuid.UUID
}
