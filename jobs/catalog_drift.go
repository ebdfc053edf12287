package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caveat-labs/caveat/internal/roles"
)

// CatalogDriftJob scans stored role tags for values outside the catalog
// enumeration. Such rows resolve to no permissions at runtime; operators
// should repair them rather than discover the fail-closed denials one
// support ticket at a time.
type CatalogDriftJob struct {
	Pool    *pgxpool.Pool
	Catalog *roles.Catalog
	Logger  *slog.Logger
}

// NewCatalogDriftJob initialises the drift scan handler.
func NewCatalogDriftJob(pool *pgxpool.Pool, catalog *roles.Catalog, logger *slog.Logger) *CatalogDriftJob {
	return &CatalogDriftJob{Pool: pool, Catalog: catalog, Logger: logger}
}

// Handle executes the drift scan.
func (j *CatalogDriftJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil || j.Catalog == nil {
		return errors.New("catalog drift: handler not configured")
	}

	rows, err := j.Pool.Query(ctx, `SELECT user_id::text, COALESCE(user_type, COALESCE(role, COALESCE(role_title, ''))) FROM profiles WHERE COALESCE(user_type, COALESCE(role, role_title)) IS NOT NULL`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var drifted int
	for rows.Next() {
		var userID, tag string
		if err := rows.Scan(&userID, &tag); err != nil {
			return err
		}
		if tag == "" {
			continue
		}
		if _, err := j.Catalog.ByTag(roles.Tag(tag)); err != nil {
			drifted++
			if j.Logger != nil {
				j.Logger.Warn("role tag outside catalog",
					slog.String("user_id", userID),
					slog.String("tag", tag))
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if j.Logger != nil {
		j.Logger.Info("catalog drift scan complete", slog.Int("drifted", drifted))
	}
	return nil
}
