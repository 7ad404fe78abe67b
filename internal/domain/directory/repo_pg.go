package directory

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

type providerRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &providerRepoPG{pool: pool} }

func (r *providerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const providerCols = `id, name, specialty, location, price, rating, review_count,
	experience, availability, image, about, education, languages, accepts_insurance,
	gender, specializations, education_details, certifications, availability_slots,
	created_at, updated_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.Name, &p.Specialty, &p.Location, &p.Price, &p.Rating, &p.ReviewCount,
		&p.Experience, &p.Availability, &p.Image, &p.About, &p.Education, &p.Languages, &p.AcceptsInsurance,
		&p.Gender, &p.Specializations, &p.EducationDetails, &p.Certifications, &p.AvailabilitySlots,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	return &p, nil
}

func (r *providerRepoPG) Create(ctx context.Context, p *Provider) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO providers (id, name, specialty, location, price,
			experience, availability, image, about, education, languages, accepts_insurance,
			gender, specializations, education_details, certifications, availability_slots)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		p.ID, p.Name, p.Specialty, p.Location, p.Price,
		p.Experience, p.Availability, p.Image, p.About, p.Education, p.Languages, p.AcceptsInsurance,
		p.Gender, p.Specializations, p.EducationDetails, p.Certifications, p.AvailabilitySlots)
	return apperr.FromStore(err)
}

func (r *providerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	p, err := scanProvider(r.conn(ctx).QueryRow(ctx, `SELECT `+providerCols+` FROM providers WHERE id = $1`, id))
	if apperr.KindOf(err) == apperr.KindNotFound {
		return nil, apperr.NotFound("provider", id.String())
	}
	return p, err
}

func (r *providerRepoPG) Update(ctx context.Context, p *Provider) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE providers SET name=$2, specialty=$3, location=$4, price=$5,
			experience=$6, availability=$7, image=$8, about=$9, education=$10,
			languages=$11, accepts_insurance=$12, gender=$13, specializations=$14,
			education_details=$15, certifications=$16, availability_slots=$17, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Specialty, p.Location, p.Price,
		p.Experience, p.Availability, p.Image, p.About, p.Education,
		p.Languages, p.AcceptsInsurance, p.Gender, p.Specializations,
		p.EducationDetails, p.Certifications, p.AvailabilitySlots)
	if err != nil {
		return apperr.FromStore(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("provider", p.ID.String())
	}
	return nil
}

func (r *providerRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if err != nil {
		return apperr.FromStore(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("provider", id.String())
	}
	return nil
}

func (r *providerRepoPG) Search(ctx context.Context, sc SearchCriteria, limit, offset int) ([]*Provider, int, error) {
	where, args := sc.whereClause()

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM providers`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.FromStore(err)
	}

	q := `SELECT ` + providerCols + ` FROM providers` + where + sc.orderClause() +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, apperr.FromStore(err)
	}
	defer rows.Close()

	providers := make([]*Provider, 0, limit)
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.FromStore(err)
	}
	return providers, total, nil
}

func (r *providerRepoPG) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Provider, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*Provider{}, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+providerCols+` FROM providers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, apperr.FromStore(err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*Provider, len(ids))
	for rows.Next() {
		p, err := scanProvider(rows)
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

func (r *providerRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM providers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperr.FromStore(err)
	}
	return exists, nil
}

func (r *providerRepoPG) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE providers SET rating=$2, review_count=$3, updated_at=NOW() WHERE id = $1`,
		id, rating, reviewCount)
	if err != nil {
		return apperr.FromStore(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("provider", id.String())
	}
	return nil
}
