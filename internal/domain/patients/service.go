package patients

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carefind/carefind/internal/platform/apperr"
)

const storeTimeout = 5 * time.Second

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "patients").Logger()}
}

func validateIdentity(id Identity) error {
	switch {
	case id.FirstName == "":
		return apperr.Validation("first_name is required")
	case id.LastName == "":
		return apperr.Validation("last_name is required")
	case id.Email == "":
		return apperr.Validation("email is required")
	case !emailPattern.MatchString(id.Email):
		return apperr.Validation("email %q is not a valid address", id.Email)
	}
	return nil
}

// Resolve maps an identity onto a stored patient. Repeated calls with the
// same email always land on the same record no matter how the details vary,
// so callers can retry safely. Email comparison is exact and case-sensitive.
func (s *Service) Resolve(ctx context.Context, id Identity) (*Patient, error) {
	id.Email = strings.TrimSpace(id.Email)
	if err := validateIdentity(id); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.repo.Upsert(ctx, id)
}

// Create registers a patient directly. Unlike Resolve it refuses to touch an
// existing record: a taken email is a conflict.
func (s *Service) Create(ctx context.Context, id Identity) (*Patient, error) {
	id.Email = strings.TrimSpace(id.Email)
	if err := validateIdentity(id); err != nil {
		return nil, err
	}
	p := &Patient{
		FirstName:         id.FirstName,
		LastName:          id.LastName,
		Email:             id.Email,
		Phone:             id.Phone,
		DateOfBirth:       id.DateOfBirth,
		Address:           id.Address,
		InsuranceProvider: id.InsuranceProvider,
		InsuranceID:       id.InsuranceID,
		EmergencyContact:  id.EmergencyContact,
		EmergencyPhone:    id.EmergencyPhone,
		Allergies:         id.Allergies,
		Medications:       id.Medications,
		Conditions:        id.Conditions,
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, p.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, email string, limit, offset int) ([]*Patient, int, error) {
	if email != "" {
		email = strings.TrimSpace(email)
		if !emailPattern.MatchString(email) {
			return nil, 0, apperr.Validation("email %q is not a valid address", email)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.repo.List(ctx, email, limit, offset)
}

// FindByIDs is the batch lookup used by listing enrichment.
func (s *Service) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.repo.FindByIDs(ctx, ids)
}
