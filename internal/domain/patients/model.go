package patients

import (
	"time"

	"github.com/google/uuid"
)

// Patient is one identity record. Email is the identity key: the store keeps
// at most one patient per email address.
type Patient struct {
	ID                uuid.UUID `db:"id" json:"id"`
	FirstName         string    `db:"first_name" json:"first_name"`
	LastName          string    `db:"last_name" json:"last_name"`
	Email             string    `db:"email" json:"email"`
	Phone             *string   `db:"phone" json:"phone,omitempty"`
	DateOfBirth       *string   `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Address           *string   `db:"address" json:"address,omitempty"`
	InsuranceProvider *string   `db:"insurance_provider" json:"insurance_provider,omitempty"`
	InsuranceID       *string   `db:"insurance_id" json:"insurance_id,omitempty"`
	EmergencyContact  *string   `db:"emergency_contact" json:"emergency_contact,omitempty"`
	EmergencyPhone    *string   `db:"emergency_phone" json:"emergency_phone,omitempty"`
	Allergies         []string  `db:"allergies" json:"allergies"`
	Medications       []string  `db:"medications" json:"medications"`
	Conditions        []string  `db:"conditions" json:"conditions"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Identity is the patient detail block a booking request carries. Resolve
// turns it into a stored Patient, reusing the record behind the email when
// one exists.
type Identity struct {
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	Email             string   `json:"email"`
	Phone             *string  `json:"phone,omitempty"`
	DateOfBirth       *string  `json:"date_of_birth,omitempty"`
	Address           *string  `json:"address,omitempty"`
	InsuranceProvider *string  `json:"insurance_provider,omitempty"`
	InsuranceID       *string  `json:"insurance_id,omitempty"`
	EmergencyContact  *string  `json:"emergency_contact,omitempty"`
	EmergencyPhone    *string  `json:"emergency_phone,omitempty"`
	Allergies         []string `json:"allergies"`
	Medications       []string `json:"medications"`
	Conditions        []string `json:"conditions"`
}
