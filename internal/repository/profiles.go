package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"atelier/storefront/internal/apperr"
	"atelier/storefront/internal/models"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (models.Profile, error) {
	const query = `
		SELECT id, email, full_name, role, avatar_url, updated_at
		FROM profiles WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var p models.Profile
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.Role,
		&p.AvatarURL,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, apperr.ErrNotFound
		}
		return models.Profile{}, &apperr.DataAccessError{Op: "get", Table: "profiles", Err: err}
	}
	return p, nil
}

// Upsert writes the profile record keyed by the identity id. On conflict the
// role column is left alone so a re-signup can never demote an admin.
func (r *ProfileRepository) Upsert(ctx context.Context, p models.Profile) error {
	const query = `
		INSERT INTO profiles (id, email, full_name, role, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, p.ID, p.Email, p.FullName, p.Role, p.AvatarURL); err != nil {
		return &apperr.DataAccessError{Op: "upsert", Table: "profiles", Err: err}
	}
	return nil
}

// ListByIDs fetches the given profiles in a single query. Missing ids are
// simply absent from the result.
func (r *ProfileRepository) ListByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	if len(ids) == 0 {
		return map[string]models.Profile{}, nil
	}

	const query = `
		SELECT id, email, full_name, role, avatar_url, updated_at
		FROM profiles WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, &apperr.DataAccessError{Op: "list", Table: "profiles", Err: err}
	}
	defer rows.Close()

	out := make(map[string]models.Profile, len(ids))
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.AvatarURL, &p.UpdatedAt); err != nil {
			return nil, &apperr.DataAccessError{Op: "scan", Table: "profiles", Err: err}
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, &apperr.DataAccessError{Op: "list", Table: "profiles", Err: err}
	}
	return out, nil
}
