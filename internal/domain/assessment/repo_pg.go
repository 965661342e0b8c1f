package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates the PostgreSQL-backed repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const cols = `id, org_id, client_name, payload, created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.OrgID, &r.ClientName, &r.Payload, &r.CreatedAt, &r.UpdatedAt)
	return &r, err
}

func (repo *repoPG) Create(ctx context.Context, r *Record) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	_, err := repo.pool.Exec(ctx,
		`INSERT INTO intake_assessment (`+cols+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.OrgID, r.ClientName, r.Payload, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (repo *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	r, err := scanRecord(repo.pool.QueryRow(ctx,
		`SELECT `+cols+` FROM intake_assessment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return r, nil
}

func (repo *repoPG) Update(ctx context.Context, r *Record) error {
	r.UpdatedAt = time.Now()
	tag, err := repo.pool.Exec(ctx,
		`UPDATE intake_assessment SET client_name = $2, payload = $3, updated_at = $4 WHERE id = $1`,
		r.ID, r.ClientName, r.Payload, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := repo.pool.Exec(ctx, `DELETE FROM intake_assessment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *repoPG) ListByOrg(ctx context.Context, orgID string) ([]*Record, error) {
	rows, err := repo.pool.Query(ctx,
		`SELECT `+cols+` FROM intake_assessment WHERE org_id = $1 ORDER BY created_at`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
