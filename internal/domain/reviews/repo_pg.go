package reviews

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

type reviewRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &reviewRepoPG{pool: pool} }

func (r *reviewRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const reviewCols = `id, provider_id, patient_id, appointment_id, rating, comment, created_at`

func scanReview(row pgx.Row) (*Review, error) {
	var rv Review
	err := row.Scan(&rv.ID, &rv.ProviderID, &rv.PatientID, &rv.AppointmentID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return &rv, nil
}

func (r *reviewRepoPG) Create(ctx context.Context, rv *Review) error {
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO reviews (id, provider_id, patient_id, appointment_id, rating, comment)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rv.ID, rv.ProviderID, rv.PatientID, rv.AppointmentID, rv.Rating, rv.Comment)
	return apperr.FromStore(err)
}

func (r *reviewRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Review, int, error) {
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
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM reviews`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.FromStore(err)
	}

	q := `SELECT ` + reviewCols + ` FROM reviews` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, apperr.FromStore(err)
	}
	defer rows.Close()

	out := make([]*Review, 0, limit)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.FromStore(err)
	}
	return out, total, nil
}

func (r *reviewRepoPG) Aggregate(ctx context.Context, providerID uuid.UUID) (float64, int, error) {
	var mean float64
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews WHERE provider_id = $1`,
		providerID).Scan(&mean, &count)
	if err != nil {
		return 0, 0, apperr.FromStore(err)
	}
	return mean, count, nil
}
