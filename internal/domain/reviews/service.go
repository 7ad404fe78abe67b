package reviews

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carefind/carefind/internal/domain/patients"
	"github.com/carefind/carefind/internal/platform/apperr"
	"github.com/carefind/carefind/internal/platform/metrics"
)

const storeTimeout = 5 * time.Second

// RatingSink is the slice of the directory service reviews needs: confirming
// a provider exists and writing its recomputed aggregate back.
type RatingSink interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	SetRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error
}

// PatientLookup resolves reviewer names for enriched listings.
type PatientLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*patients.Patient, error)
}

type Service struct {
	repo     Repository
	ratings  RatingSink
	patients PatientLookup
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(repo Repository, ratings RatingSink, lookup PatientLookup,
	m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		ratings:  ratings,
		patients: lookup,
		metrics:  m,
		logger:   logger.With().Str("component", "reviews").Logger(),
	}
}

// roundRating rounds a mean to one decimal, halves away from zero. 4.25
// becomes 4.3.
func roundRating(mean float64) float64 {
	return math.Round(mean*10) / 10
}

// Create stores a review and recomputes the provider's rating aggregate from
// scratch. A recompute failure does not undo the review: the review stands
// and the stale aggregate is reported as a consistency warning.
func (s *Service) Create(ctx context.Context, in Input) (*Review, error) {
	switch {
	case in.ProviderID == uuid.Nil:
		s.metrics.ObserveReview("rejected")
		return nil, apperr.Validation("provider_id is required")
	case in.PatientID == uuid.Nil:
		s.metrics.ObserveReview("rejected")
		return nil, apperr.Validation("patient_id is required")
	case in.AppointmentID == nil || *in.AppointmentID == uuid.Nil:
		s.metrics.ObserveReview("rejected")
		return nil, apperr.Validation("appointment_id is required")
	case in.Comment == nil || strings.TrimSpace(*in.Comment) == "":
		s.metrics.ObserveReview("rejected")
		return nil, apperr.Validation("comment is required")
	case in.Rating < 1 || in.Rating > 5:
		s.metrics.ObserveReview("rejected")
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	ok, err := s.ratings.Exists(ctx, in.ProviderID)
	if err != nil {
		s.metrics.ObserveReview("failed")
		return nil, err
	}
	if !ok {
		s.metrics.ObserveReview("failed")
		return nil, apperr.NotFound("provider", in.ProviderID.String())
	}

	rv := &Review{
		ProviderID:    in.ProviderID,
		PatientID:     in.PatientID,
		AppointmentID: in.AppointmentID,
		Rating:        in.Rating,
		Comment:       in.Comment,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		s.metrics.ObserveReview("failed")
		return nil, err
	}

	if err := s.recompute(ctx, in.ProviderID); err != nil {
		s.metrics.ObserveRecomputeFailure()
		s.logger.Warn().Err(err).
			Str("provider_id", in.ProviderID.String()).
			Msg("rating recompute failed, aggregate is stale until the next review")
	}
	s.metrics.ObserveReview("created")
	return rv, nil
}

func (s *Service) recompute(ctx context.Context, providerID uuid.UUID) error {
	mean, count, err := s.repo.Aggregate(ctx, providerID)
	if err != nil {
		return err
	}
	return s.ratings.SetRating(ctx, providerID, roundRating(mean), count)
}

// List returns one filtered page of reviews newest first with reviewer
// names joined in. Reviews whose patient record is gone keep an empty name
// rather than being dropped.
func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*EnrichedReview, int, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	rvs, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(rvs))
	seen := map[uuid.UUID]bool{}
	for _, rv := range rvs {
		if !seen[rv.PatientID] {
			seen[rv.PatientID] = true
			ids = append(ids, rv.PatientID)
		}
	}
	pats, err := s.patients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*EnrichedReview, 0, len(rvs))
	missing := 0
	for _, rv := range rvs {
		row := &EnrichedReview{Review: *rv}
		if p, ok := pats[rv.PatientID]; ok {
			row.PatientName = strings.TrimSpace(p.FirstName + " " + p.LastName)
		} else {
			missing++
		}
		out = append(out, row)
	}
	if missing > 0 {
		s.metrics.ObserveEnrichmentDrop("reviews", missing)
		s.logger.Warn().Int("count", missing).
			Msg("reviews reference missing patients")
	}
	return out, total, nil
}
