package directory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carefind/carefind/internal/platform/apperr"
	"github.com/carefind/carefind/pkg/pagination"
)

// storeTimeout bounds every record store call so a stalled store surfaces as
// a StoreUnavailable error instead of hanging the request.
const storeTimeout = 5 * time.Second

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "directory").Logger()}
}

func validateInput(in Input) error {
	switch {
	case in.Name == "":
		return apperr.Validation("name is required")
	case in.Specialty == "":
		return apperr.Validation("specialty is required")
	case in.Location == "":
		return apperr.Validation("location is required")
	case in.Price < 0:
		return apperr.Validation("price must not be negative")
	}
	return nil
}

func applyInput(p *Provider, in Input) {
	p.Name = in.Name
	p.Specialty = in.Specialty
	p.Location = in.Location
	p.Price = in.Price
	p.Experience = in.Experience
	p.Availability = in.Availability
	p.Image = in.Image
	p.About = in.About
	p.Education = in.Education
	p.Languages = in.Languages
	p.AcceptsInsurance = in.AcceptsInsurance
	p.Gender = in.Gender
	p.Specializations = in.Specializations
	p.EducationDetails = in.EducationDetails
	p.Certifications = in.Certifications
	p.AvailabilitySlots = in.AvailabilitySlots
}

func (s *Service) Create(ctx context.Context, in Input) (*Provider, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var p Provider
	applyInput(&p, in)

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, p.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.repo.GetByID(ctx, id)
}

// Update replaces the client-writable fields of a provider. The derived
// rating aggregate is untouched regardless of what the payload carries.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Provider, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyInput(p, in)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.repo.Delete(ctx, id)
}

// Search runs the multi-predicate provider search and returns one page plus
// the total match count.
func (s *Service) Search(ctx context.Context, sc SearchCriteria, page pagination.Params) ([]*Provider, int, error) {
	if err := sc.Validate(); err != nil {
		return nil, 0, err
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.repo.Search(ctx, sc, page.Limit, page.Offset())
}

// Exists reports whether a provider record is present; booking uses it to
// reject appointments against dangling provider ids.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.repo.Exists(ctx, id)
}

// FindByIDs is the batch lookup used by listing enrichment.
func (s *Service) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.repo.FindByIDs(ctx, ids)
}

// SetRating overwrites the derived aggregate; only the review recompute path
// calls it.
func (s *Service) SetRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.repo.UpdateRating(ctx, id, rating, reviewCount)
}
