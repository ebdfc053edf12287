package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/caveat-labs/caveat/internal/rbac"
	"github.com/caveat-labs/caveat/internal/shared"
)

// RoleSyncJob drops cached role resolutions after an assignment change and
// leaves an audit trail of the fan-out. The Redis pub/sub notification is
// the fast path; this job is the durable one that survives replica
// restarts.
type RoleSyncJob struct {
	Resolver *rbac.Resolver
	Audit    *shared.AuditLogger
	Logger   *slog.Logger
}

// NewRoleSyncJob initialises the role sync handler.
func NewRoleSyncJob(resolver *rbac.Resolver, audit *shared.AuditLogger, logger *slog.Logger) *RoleSyncJob {
	return &RoleSyncJob{Resolver: resolver, Audit: audit, Logger: logger}
}

// Handle executes the role sync logic.
func (j *RoleSyncJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Resolver == nil {
		return errors.New("role sync: handler not configured")
	}
	var payload RoleSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	if err := j.Resolver.Invalidate(ctx, payload.UserID); err != nil {
		return err
	}
	if j.Audit != nil {
		if err := j.Audit.Record(ctx, shared.AuditLog{
			ActorID:  payload.ActorID,
			Action:   "role.sync",
			Entity:   "profile",
			EntityID: payload.UserID.String(),
			Meta:     map[string]any{"tag": payload.Tag},
		}); err != nil && j.Logger != nil {
			j.Logger.Warn("role sync audit", slog.Any("error", err))
		}
	}
	if j.Logger != nil {
		j.Logger.Info("role resolution invalidated",
			slog.String("user_id", payload.UserID.String()),
			slog.String("tag", payload.Tag))
	}
	return nil
}
