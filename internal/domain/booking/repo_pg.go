package booking

import (
	"context"
	"fmt"
	"strings"

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

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &appointmentRepoPG{pool: pool} }

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `id, provider_id, patient_id, to_char(date, 'YYYY-MM-DD'), time, type, status,
	reason, symptoms, notes, price, payment_status, idempotency_key, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.ProviderID, &a.PatientID, &a.Date, &a.Time, &a.Type, &a.Status,
		&a.Reason, &a.Symptoms, &a.Notes, &a.Price, &a.PaymentStatus, &a.IdempotencyKey,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, provider_id, patient_id, date, time, type, status,
			reason, symptoms, notes, price, payment_status, idempotency_key)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		a.ID, a.ProviderID, a.PatientID, a.Date, a.Time, a.Type, a.Status,
		a.Reason, a.Symptoms, a.Notes, a.Price, a.PaymentStatus, a.IdempotencyKey)
	return apperr.FromStore(err)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
	if apperr.KindOf(err) == apperr.KindNotFound {
		return nil, apperr.NotFound("appointment", id.String())
	}
	return a, err
}

func (r *appointmentRepoPG) GetByIdempotencyKey(ctx context.Context, key string) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE idempotency_key = $1`, key))
	if apperr.KindOf(err) == apperr.KindNotFound {
		return nil, apperr.NotFound("appointment", key)
	}
	return a, err
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET date=$2, time=$3, status=$4, payment_status=$5, notes=$6, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Date, a.Time, a.Status, a.PaymentStatus, a.Notes)
	if err != nil {
		return apperr.FromStore(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment", a.ID.String())
	}
	return nil
}

func (r *appointmentRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.ProviderID != uuid.Nil {
		conds = append(conds, "provider_id = "+arg(f.ProviderID))
	}
	if f.PatientID != uuid.Nil {
		conds = append(conds, "patient_id = "+arg(f.PatientID))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+arg(f.Status))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointments`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.FromStore(err)
	}

	q := `SELECT ` + apptCols + ` FROM appointments` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, apperr.FromStore(err)
	}
	defer rows.Close()

	out := make([]*Appointment, 0, limit)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.FromStore(err)
	}
	return out, total, nil
}
