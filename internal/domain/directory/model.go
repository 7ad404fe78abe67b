package directory

import (
	"time"

	"github.com/google/uuid"
)

// Provider maps to the providers table. Rating and ReviewCount are derived
// from the reviews collection and are never writable by a client; the reviews
// service owns them.
type Provider struct {
	ID                uuid.UUID          `db:"id" json:"id"`
	Name              string             `db:"name" json:"name"`
	Specialty         string             `db:"specialty" json:"specialty"`
	Location          string             `db:"location" json:"location"`
	Price             int                `db:"price" json:"price"`
	Rating            float64            `db:"rating" json:"rating"`
	ReviewCount       int                `db:"review_count" json:"reviews"`
	Experience        *string            `db:"experience" json:"experience,omitempty"`
	Availability      *string            `db:"availability" json:"availability,omitempty"`
	Image             *string            `db:"image" json:"image,omitempty"`
	About             *string            `db:"about" json:"about,omitempty"`
	Education         *string            `db:"education" json:"education,omitempty"`
	Languages         []string           `db:"languages" json:"languages"`
	AcceptsInsurance  bool               `db:"accepts_insurance" json:"accepts_insurance"`
	Gender            *string            `db:"gender" json:"gender,omitempty"`
	Specializations   []string           `db:"specializations" json:"specializations"`
	EducationDetails  []EducationDetail  `db:"education_details" json:"education_details"`
	Certifications    []string           `db:"certifications" json:"certifications"`
	AvailabilitySlots []AvailabilitySlot `db:"availability_slots" json:"availability_slots"`
	CreatedAt         time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `db:"updated_at" json:"updated_at"`
}

// AvailabilitySlot is one bookable slot in a provider's calendar.
type AvailabilitySlot struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// EducationDetail is one entry of a provider's education history.
type EducationDetail struct {
	Degree string `json:"degree"`
	School string `json:"school"`
	Year   string `json:"year"`
}

// Input is the client-writable subset of a provider payload. It deliberately
// has no rating or review count field.
type Input struct {
	Name              string             `json:"name"`
	Specialty         string             `json:"specialty"`
	Location          string             `json:"location"`
	Price             int                `json:"price"`
	Experience        *string            `json:"experience,omitempty"`
	Availability      *string            `json:"availability,omitempty"`
	Image             *string            `json:"image,omitempty"`
	About             *string            `json:"about,omitempty"`
	Education         *string            `json:"education,omitempty"`
	Languages         []string           `json:"languages"`
	AcceptsInsurance  bool               `json:"accepts_insurance"`
	Gender            *string            `json:"gender,omitempty"`
	Specializations   []string           `json:"specializations"`
	EducationDetails  []EducationDetail  `json:"education_details"`
	Certifications    []string           `json:"certifications"`
	AvailabilitySlots []AvailabilitySlot `json:"availability_slots"`
}
