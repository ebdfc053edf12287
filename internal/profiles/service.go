package profiles

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/caveat-labs/caveat/internal/roles"
	"github.com/caveat-labs/caveat/internal/shared"
	"github.com/caveat-labs/caveat/jobs"
)

// RepositoryPort defines data access methods for profiles.
type RepositoryPort interface {
	GetByID(ctx context.Context, userID uuid.UUID) (Profile, error)
	List(ctx context.Context, limit, offset int) ([]Profile, error)
	UpdateRoleTag(ctx context.Context, userID uuid.UUID, tag string) error
}

// EventPublisher broadcasts role-change events to running replicas.
type EventPublisher interface {
	PublishRoleChange(ctx context.Context, ev RoleChangeEvent) error
}

// RoleSyncEnqueuer schedules the durable role-change fan-out.
type RoleSyncEnqueuer interface {
	EnqueueRoleSync(ctx context.Context, payload jobs.RoleSyncPayload) error
}

// AuditRecorder persists audit trail entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles profile business logic, in particular the role
// assignment path.
type Service struct {
	repo      RepositoryPort
	catalog   *roles.Catalog
	audit     AuditRecorder
	publisher EventPublisher
	enqueuer  RoleSyncEnqueuer
	logger    *slog.Logger
}

// NewService builds Service instance. audit, publisher and enqueuer may be
// nil; the role change itself still commits.
func NewService(repo RepositoryPort, catalog *roles.Catalog, audit AuditRecorder, publisher EventPublisher, enqueuer RoleSyncEnqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, catalog: catalog, audit: audit, publisher: publisher, enqueuer: enqueuer, logger: logger}
}

// Get returns a single profile with its effective role tag applied.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (Profile, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if tag, ok := RoleTagOf(p); ok {
		p.RoleTag = tag
	}
	return p, nil
}

// List returns profiles with effective role tags applied.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Profile, error) {
	out, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if tag, ok := RoleTagOf(out[i]); ok {
			out[i].RoleTag = tag
		}
	}
	return out, nil
}

// ChangeRole assigns tag to the user. The admin path refuses the
// customer-facing buyer and seller tags; those are set during signup by
// the identity provider, never granted by an operator. On success the
// change is audited, broadcast, and queued for durable fan-out.
func (s *Service) ChangeRole(ctx context.Context, actorID, userID uuid.UUID, tag roles.Tag) error {
	role, err := s.catalog.ByTag(tag)
	if err != nil {
		return err
	}
	if role == nil {
		// Lenient catalog lookup: still refuse to store an unknown tag.
		return fmt.Errorf("profiles: %w: %q", shared.ErrUnknownRole, tag)
	}
	if tag.EndUser() {
		return fmt.Errorf("profiles: %w: %q", ErrEndUserRole, tag)
	}

	if err := s.repo.UpdateRoleTag(ctx, userID, string(tag)); err != nil {
		return err
	}

	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "role.change",
			Entity:   "profile",
			EntityID: userID.String(),
			Meta:     map[string]any{"tag": string(tag)},
		}); err != nil {
			s.logger.Warn("audit role change", slog.Any("error", err))
		}
	}

	ev := RoleChangeEvent{UserID: userID, Tag: string(tag)}
	if s.publisher != nil {
		if err := s.publisher.PublishRoleChange(ctx, ev); err != nil {
			s.logger.Warn("publish role change", slog.Any("error", err))
		}
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueRoleSync(ctx, jobs.RoleSyncPayload{
			UserID:  userID,
			Tag:     string(tag),
			ActorID: actorID,
		}); err != nil {
			s.logger.Warn("enqueue role sync", slog.Any("error", err))
		}
	}
	return nil
}
