package booking

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carefind/carefind/internal/domain/directory"
	"github.com/carefind/carefind/internal/domain/patients"
	"github.com/carefind/carefind/internal/platform/apperr"
	"github.com/carefind/carefind/internal/platform/metrics"
)

const storeTimeout = 5 * time.Second

// ProviderDirectory is the slice of the directory service booking needs.
type ProviderDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*directory.Provider, error)
}

// IdentityResolver is the slice of the patient service booking needs.
type IdentityResolver interface {
	Resolve(ctx context.Context, id patients.Identity) (*patients.Patient, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*patients.Patient, error)
}

// TxRunner executes fn inside one store transaction. Store calls made with
// the context fn receives join that transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn with no transaction. Useful where atomicity is
// provided elsewhere, and in tests.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	repo      Repository
	providers ProviderDirectory
	identity  IdentityResolver
	runTx     TxRunner
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewService(repo Repository, providers ProviderDirectory, identity IdentityResolver,
	runTx TxRunner, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		providers: providers,
		identity:  identity,
		runTx:     runTx,
		metrics:   m,
		logger:    logger.With().Str("component", "booking").Logger(),
	}
}

var validTypes = map[string]bool{TypeVideo: true, TypeInPerson: true}
var validStatuses = map[string]bool{StatusScheduled: true, StatusCompleted: true, StatusCancelled: true, StatusNoShow: true}
var validPayments = map[string]bool{PaymentPending: true, PaymentPaid: true, PaymentRefunded: true}

func validateRequest(req Request) error {
	switch {
	case req.ProviderID == uuid.Nil:
		return apperr.Validation("provider_id is required")
	case req.Date == "":
		return apperr.Validation("date is required")
	case req.Time == "":
		return apperr.Validation("time is required")
	case req.Reason == nil || strings.TrimSpace(*req.Reason) == "":
		return apperr.Validation("reason is required")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return apperr.Validation("date %q is not in YYYY-MM-DD form", req.Date)
	}
	if req.Type != "" && !validTypes[req.Type] {
		return apperr.Validation("type must be %s or %s", TypeVideo, TypeInPerson)
	}
	if req.Price != nil && *req.Price < 0 {
		return apperr.Validation("price must not be negative")
	}
	return nil
}

// Book runs the whole booking workflow atomically: resolve the patient
// identity behind the request's email, verify the provider exists, then
// create the appointment. A request resubmitted with the same idempotency
// key returns the appointment the first submission created.
func (s *Service) Book(ctx context.Context, req Request) (*Appointment, error) {
	if err := validateRequest(req); err != nil {
		s.metrics.ObserveBooking("rejected")
		return nil, err
	}
	if req.Type == "" {
		req.Type = TypeInPerson
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var appt *Appointment
	err := s.runTx(ctx, func(ctx context.Context) error {
		if req.IdempotencyKey != "" {
			existing, err := s.repo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
			if err == nil {
				appt = existing
				return nil
			}
			if apperr.KindOf(err) != apperr.KindNotFound {
				return err
			}
		}

		ok, err := s.providers.Exists(ctx, req.ProviderID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("provider", req.ProviderID.String())
		}

		patient, err := s.identity.Resolve(ctx, req.Patient)
		if err != nil {
			return err
		}

		a := &Appointment{
			ProviderID:    req.ProviderID,
			PatientID:     patient.ID,
			Date:          req.Date,
			Time:          req.Time,
			Type:          req.Type,
			Status:        StatusScheduled,
			Reason:        req.Reason,
			Symptoms:      req.Symptoms,
			Price:         req.Price,
			PaymentStatus: PaymentPending,
		}
		if req.IdempotencyKey != "" {
			key := req.IdempotencyKey
			a.IdempotencyKey = &key
		}
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		appt = a
		return nil
	})
	// A concurrent submission with the same key can slip between our lookup
	// and insert; the partial unique index turns that into a conflict, and
	// the winner's appointment is the answer.
	if apperr.KindOf(err) == apperr.KindConflict && req.IdempotencyKey != "" {
		s.logger.Info().Str("idempotency_key", req.IdempotencyKey).Msg("duplicate booking submission, returning existing appointment")
		appt, err = s.repo.GetByIdempotencyKey(ctx, req.IdempotencyKey)
	}
	if err != nil {
		s.metrics.ObserveBooking("failed")
		return nil, err
	}
	s.metrics.ObserveBooking("booked")
	return appt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial change to an appointment. Status and payment
// status values are checked against the known sets.
func (s *Service) Update(ctx context.Context, id uuid.UUID, upd Update) (*Appointment, error) {
	if upd.Status != nil && !validStatuses[*upd.Status] {
		return nil, apperr.Validation("unknown status %q", *upd.Status)
	}
	if upd.PaymentStatus != nil && !validPayments[*upd.PaymentStatus] {
		return nil, apperr.Validation("unknown payment status %q", *upd.PaymentStatus)
	}
	if upd.Date != nil {
		if _, err := time.Parse("2006-01-02", *upd.Date); err != nil {
			return nil, apperr.Validation("date %q is not in YYYY-MM-DD form", *upd.Date)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Date != nil {
		a.Date = *upd.Date
	}
	if upd.Time != nil {
		a.Time = *upd.Time
	}
	if upd.Status != nil {
		a.Status = *upd.Status
	}
	if upd.PaymentStatus != nil {
		a.PaymentStatus = *upd.PaymentStatus
	}
	if upd.Notes != nil {
		a.Notes = upd.Notes
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// List returns one enriched page of appointments. Rows whose provider or
// patient reference cannot be resolved are dropped from the page; the total
// still counts them, so a caller comparing the two can detect the gap.
func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*EnrichedAppointment, int, error) {
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, apperr.Validation("unknown status %q", f.Status)
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	appts, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	enriched, err := s.enrich(ctx, appts)
	if err != nil {
		return nil, 0, err
	}
	return enriched, total, nil
}

func (s *Service) enrich(ctx context.Context, appts []*Appointment) ([]*EnrichedAppointment, error) {
	if len(appts) == 0 {
		return []*EnrichedAppointment{}, nil
	}

	providerIDs := make([]uuid.UUID, 0, len(appts))
	patientIDs := make([]uuid.UUID, 0, len(appts))
	seenProv := map[uuid.UUID]bool{}
	seenPat := map[uuid.UUID]bool{}
	for _, a := range appts {
		if !seenProv[a.ProviderID] {
			seenProv[a.ProviderID] = true
			providerIDs = append(providerIDs, a.ProviderID)
		}
		if !seenPat[a.PatientID] {
			seenPat[a.PatientID] = true
			patientIDs = append(patientIDs, a.PatientID)
		}
	}

	provs, err := s.providers.FindByIDs(ctx, providerIDs)
	if err != nil {
		return nil, err
	}
	pats, err := s.identity.FindByIDs(ctx, patientIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*EnrichedAppointment, 0, len(appts))
	dropped := 0
	for _, a := range appts {
		prov, okP := provs[a.ProviderID]
		pat, okQ := pats[a.PatientID]
		if !okP || !okQ {
			dropped++
			s.logger.Warn().
				Str("appointment_id", a.ID.String()).
				Str("provider_id", a.ProviderID.String()).
				Str("patient_id", a.PatientID.String()).
				Bool("provider_resolved", okP).
				Bool("patient_resolved", okQ).
				Msg("dropping appointment with dangling reference from listing")
			continue
		}
		out = append(out, &EnrichedAppointment{
			Appointment: *a,
			Provider: ProviderSummary{
				ID: prov.ID, Name: prov.Name, Specialty: prov.Specialty,
				Location: prov.Location, Image: prov.Image,
			},
			Patient: PatientSummary{
				ID: pat.ID, FirstName: pat.FirstName, LastName: pat.LastName, Email: pat.Email,
			},
		})
	}
	if dropped > 0 {
		s.metrics.ObserveEnrichmentDrop("appointments", dropped)
	}
	return out, nil
}
