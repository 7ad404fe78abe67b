package patients

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carefind/carefind/internal/platform/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	byEmail map[string]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{byEmail: make(map[string]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	if _, ok := m.byEmail[p.Email]; ok {
		return apperr.Conflict("patient with email %s already exists", p.Email)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	cp := *p
	m.byEmail[p.Email] = &cp
	return nil
}

func (m *mockRepo) Upsert(_ context.Context, id Identity) (*Patient, error) {
	if existing, ok := m.byEmail[id.Email]; ok {
		existing.FirstName = id.FirstName
		existing.LastName = id.LastName
		if id.Phone != nil {
			existing.Phone = id.Phone
		}
		if id.DateOfBirth != nil {
			existing.DateOfBirth = id.DateOfBirth
		}
		if id.Address != nil {
			existing.Address = id.Address
		}
		// Medical history always takes the latest submission, even if empty.
		existing.Allergies = id.Allergies
		existing.Medications = id.Medications
		existing.Conditions = id.Conditions
		existing.UpdatedAt = time.Now()
		cp := *existing
		return &cp, nil
	}
	p := &Patient{
		ID:          uuid.New(),
		FirstName:   id.FirstName,
		LastName:    id.LastName,
		Email:       id.Email,
		Phone:       id.Phone,
		DateOfBirth: id.DateOfBirth,
		Address:     id.Address,
		Allergies:   id.Allergies,
		Medications: id.Medications,
		Conditions:  id.Conditions,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.byEmail[id.Email] = p
	cp := *p
	return &cp, nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	for _, p := range m.byEmail {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("patient", id.String())
}

func (m *mockRepo) List(_ context.Context, email string, limit, offset int) ([]*Patient, int, error) {
	var all []*Patient
	for _, p := range m.byEmail {
		if email == "" || p.Email == email {
			all = append(all, p)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*Patient, error) {
	out := make(map[uuid.UUID]*Patient)
	for _, p := range m.byEmail {
		for _, id := range ids {
			if p.ID == id {
				out[id] = p
			}
		}
	}
	return out, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, zerolog.Nop()), repo
}

// -- Tests --

func TestService_Resolve_CreatesOnFirstContact(t *testing.T) {
	svc, repo := newTestService()
	p, err := svc.Resolve(context.Background(), Identity{FirstName: "Maria", LastName: "Lopez", Email: "maria@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected assigned id")
	}
	if len(repo.byEmail) != 1 {
		t.Errorf("expected one stored patient, got %d", len(repo.byEmail))
	}
}

func TestService_Resolve_Idempotent(t *testing.T) {
	svc, repo := newTestService()
	first, err := svc.Resolve(context.Background(), Identity{FirstName: "Maria", LastName: "Lopez", Email: "maria@example.com"})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := svc.Resolve(context.Background(), Identity{FirstName: "Maria G.", LastName: "Lopez", Email: "maria@example.com"})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("same email must resolve to same patient: %s vs %s", first.ID, second.ID)
	}
	if len(repo.byEmail) != 1 {
		t.Errorf("expected one stored patient, got %d", len(repo.byEmail))
	}
	if second.FirstName != "Maria G." {
		t.Errorf("resolve should refresh details, got %q", second.FirstName)
	}
}

func TestService_Resolve_RefreshesContactAndMedicalHistory(t *testing.T) {
	svc, _ := newTestService()
	oldPhone := "555-0100"
	first, err := svc.Resolve(context.Background(), Identity{
		FirstName: "Maria", LastName: "Lopez", Email: "maria@example.com",
		Phone:     &oldPhone,
		Allergies: []string{"penicillin"},
	})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	newPhone := "555-0199"
	second, err := svc.Resolve(context.Background(), Identity{
		FirstName: "Maria", LastName: "Lopez", Email: "maria@example.com",
		Phone:       &newPhone,
		Allergies:   []string{"penicillin", "latex"},
		Medications: []string{"lisinopril"},
	})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same patient, got %s and %s", first.ID, second.ID)
	}
	if second.Phone == nil || *second.Phone != newPhone {
		t.Errorf("expected updated phone %s, got %v", newPhone, second.Phone)
	}
	if len(second.Allergies) != 2 || len(second.Medications) != 1 {
		t.Errorf("expected latest medical history to win, got allergies=%v medications=%v",
			second.Allergies, second.Medications)
	}
}

func TestService_Resolve_TrimsEmailWhitespace(t *testing.T) {
	svc, _ := newTestService()
	first, err := svc.Resolve(context.Background(), Identity{FirstName: "Maria", LastName: "Lopez", Email: " maria@example.com "})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := svc.Resolve(context.Background(), Identity{FirstName: "Maria", LastName: "Lopez", Email: "maria@example.com"})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Error("surrounding whitespace must not fork the identity")
	}
}

func TestService_Resolve_EmailIsCaseSensitive(t *testing.T) {
	svc, repo := newTestService()
	if _, err := svc.Resolve(context.Background(), Identity{FirstName: "Maria", LastName: "Lopez", Email: "Maria@example.com"}); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := svc.Resolve(context.Background(), Identity{FirstName: "Maria", LastName: "Lopez", Email: "maria@example.com"}); err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if len(repo.byEmail) != 2 {
		t.Errorf("differently cased emails are distinct identities, got %d records", len(repo.byEmail))
	}
}

func TestService_Resolve_Validation(t *testing.T) {
	svc, _ := newTestService()
	tests := []struct {
		name string
		in   Identity
	}{
		{"missing first name", Identity{LastName: "Lopez", Email: "a@b.com"}},
		{"missing last name", Identity{FirstName: "Maria", Email: "a@b.com"}},
		{"missing email", Identity{FirstName: "Maria", LastName: "Lopez"}},
		{"malformed email", Identity{FirstName: "Maria", LastName: "Lopez", Email: "not-an-email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Resolve(context.Background(), tt.in)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_Create_ConflictOnDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	in := Identity{FirstName: "Maria", LastName: "Lopez", Email: "maria@example.com"}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(context.Background(), in)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestService_List_FilterByEmail(t *testing.T) {
	svc, _ := newTestService()
	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, err := svc.Create(context.Background(), Identity{FirstName: "P", LastName: "Q", Email: email}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	items, total, err := svc.List(context.Background(), "a@example.com", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Email != "a@example.com" {
		t.Errorf("expected single match for filtered email, got total=%d items=%d", total, len(items))
	}
}

func TestService_List_RejectsMalformedEmailFilter(t *testing.T) {
	svc, _ := newTestService()
	_, _, err := svc.List(context.Background(), "nope", 10, 0)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}
