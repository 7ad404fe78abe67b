package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/carefind/carefind/internal/domain/patients"
)

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

// Appointment types.
const (
	TypeVideo    = "video"
	TypeInPerson = "in-person"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

// Appointment is one stored booking. ProviderID and PatientID reference the
// directory and patient stores.
type Appointment struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProviderID     uuid.UUID `db:"provider_id" json:"provider_id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	Date           string    `db:"date" json:"date"`
	Time           string    `db:"time" json:"time"`
	Type           string    `db:"type" json:"type"`
	Status         string    `db:"status" json:"status"`
	Reason         *string   `db:"reason" json:"reason,omitempty"`
	Symptoms       *string   `db:"symptoms" json:"symptoms,omitempty"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	Price          *int      `db:"price" json:"price,omitempty"`
	PaymentStatus  string    `db:"payment_status" json:"payment_status"`
	IdempotencyKey *string   `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Request is one booking submission: who the patient is plus what they want
// to book. IdempotencyKey is optional; resubmitting the same key returns the
// appointment the first submission created instead of booking twice.
type Request struct {
	Patient        patients.Identity `json:"patient"`
	ProviderID     uuid.UUID         `json:"provider_id"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	Type           string            `json:"type"`
	Reason         *string           `json:"reason,omitempty"`
	Symptoms       *string           `json:"symptoms,omitempty"`
	Price          *int              `json:"price,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}

// Update carries the mutable fields of an existing appointment. Nil fields
// stay untouched.
type Update struct {
	Date          *string `json:"date,omitempty"`
	Time          *string `json:"time,omitempty"`
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// ProviderSummary is the provider slice attached to an enriched listing.
type ProviderSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Location  string    `json:"location"`
	Image     *string   `json:"image,omitempty"`
}

// PatientSummary is the patient slice attached to an enriched listing.
type PatientSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

// EnrichedAppointment is one listing row with its references resolved.
type EnrichedAppointment struct {
	Appointment
	Provider ProviderSummary `json:"provider"`
	Patient  PatientSummary  `json:"patient"`
}

// Filter narrows an appointment listing. Zero values are inactive.
type Filter struct {
	ProviderID uuid.UUID
	PatientID  uuid.UUID
	Status     string
}
