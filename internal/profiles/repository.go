package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caveat-labs/caveat/internal/platform/httpx"
	"github.com/caveat-labs/caveat/internal/shared"
)

// Repository provides PostgreSQL backed persistence for profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `user_id, email, COALESCE(full_name, ''), COALESCE(user_type, ''), COALESCE(role, ''), COALESCE(role_title, ''), created_at, updated_at`

// GetByID fetches a single profile.
func (r *Repository) GetByID(ctx context.Context, userID uuid.UUID) (Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, shared.ErrNotFound
		}
		return Profile{}, fmt.Errorf("profiles: get: %w", err)
	}
	return p, nil
}

// List returns profiles ordered by creation time.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Profile, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("profiles: list: %w", err)
	}
	defer rows.Close()
	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("profiles: scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("profiles: rows: %w", err)
	}
	return out, nil
}

// Create inserts a new profile row.
func (r *Repository) Create(ctx context.Context, p Profile) (Profile, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO profiles (user_id, email, full_name, user_type) VALUES ($1, $2, $3, NULLIF($4, '')) RETURNING `+profileColumns,
		p.UserID, p.Email, p.FullName, p.RoleTag)
	created, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, httpx.ErrDuplicate
		}
		return Profile{}, fmt.Errorf("profiles: create: %w", err)
	}
	return created, nil
}

// UpdateRoleTag sets the canonical user_type and clears legacy columns so
// the adapter fallbacks stop firing for this row.
func (r *Repository) UpdateRoleTag(ctx context.Context, userID uuid.UUID, tag string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE profiles SET user_type = $2, role = NULL, role_title = NULL, updated_at = NOW() WHERE user_id = $1`,
		userID, tag)
	if err != nil {
		return fmt.Errorf("profiles: update role: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GetRoleTag reads the effective role tag for a user. It satisfies the
// resolver's ProfileStore port: (tag, true) when a tag is derivable,
// (_, false, nil) when the user has no role, and a non-nil error only on
// store failure.
func (r *Repository) GetRoleTag(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	p, err := r.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	tag, ok := RoleTagOf(p)
	return tag, ok, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.Email, &p.FullName, &p.RoleTag, &p.LegacyRole, &p.LegacyTitle, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
