package patients

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carefind/carefind/internal/platform/apperr"
	"github.com/carefind/carefind/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &patientRepoPG{pool: pool} }

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, first_name, last_name, email, phone, date_of_birth, address,
	insurance_provider, insurance_id, emergency_contact, emergency_phone,
	allergies, medications, conditions, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.DateOfBirth, &p.Address,
		&p.InsuranceProvider, &p.InsuranceID, &p.EmergencyContact, &p.EmergencyPhone,
		&p.Allergies, &p.Medications, &p.Conditions, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, first_name, last_name, email, phone, date_of_birth, address,
			insurance_provider, insurance_id, emergency_contact, emergency_phone,
			allergies, medications, conditions)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth, p.Address,
		p.InsuranceProvider, p.InsuranceID, p.EmergencyContact, p.EmergencyPhone,
		p.Allergies, p.Medications, p.Conditions)
	if apperr.KindOf(apperr.FromStore(err)) == apperr.KindConflict {
		return apperr.Conflict("patient with email %s already exists", p.Email)
	}
	return apperr.FromStore(err)
}

// Upsert resolves an identity in a single write. The unique index on email
// makes this safe under concurrent requests for the same address: one insert
// wins and the other takes the update arm against the winner's row.
func (r *patientRepoPG) Upsert(ctx context.Context, id Identity) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (id, first_name, last_name, email, phone, date_of_birth, address,
			insurance_provider, insurance_id, emergency_contact, emergency_phone,
			allergies, medications, conditions)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (email) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = COALESCE(EXCLUDED.phone, patients.phone),
			date_of_birth = COALESCE(EXCLUDED.date_of_birth, patients.date_of_birth),
			address = COALESCE(EXCLUDED.address, patients.address),
			insurance_provider = COALESCE(EXCLUDED.insurance_provider, patients.insurance_provider),
			insurance_id = COALESCE(EXCLUDED.insurance_id, patients.insurance_id),
			emergency_contact = COALESCE(EXCLUDED.emergency_contact, patients.emergency_contact),
			emergency_phone = COALESCE(EXCLUDED.emergency_phone, patients.emergency_phone),
			allergies = EXCLUDED.allergies,
			medications = EXCLUDED.medications,
			conditions = EXCLUDED.conditions,
			updated_at = NOW()
		RETURNING `+patientCols,
		uuid.New(), id.FirstName, id.LastName, id.Email, id.Phone, id.DateOfBirth, id.Address,
		id.InsuranceProvider, id.InsuranceID, id.EmergencyContact, id.EmergencyPhone,
		id.Allergies, id.Medications, id.Conditions))
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if apperr.KindOf(err) == apperr.KindNotFound {
		return nil, apperr.NotFound("patient", id.String())
	}
	return p, err
}

func (r *patientRepoPG) List(ctx context.Context, email string, limit, offset int) ([]*Patient, int, error) {
	where := ""
	args := []interface{}{}
	if email != "" {
		where = " WHERE email = $1"
		args = append(args, email)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.FromStore(err)
	}

	q := `SELECT ` + patientCols + ` FROM patients` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, apperr.FromStore(err)
	}
	defer rows.Close()

	out := make([]*Patient, 0, limit)
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.FromStore(err)
	}
	return out, total, nil
}

func (r *patientRepoPG) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Patient, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*Patient{}, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*Patient, len(ids))
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FromStore(err)
	}
	return out, nil
}
