package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/caveat-labs/caveat/internal/roles"
	"github.com/caveat-labs/caveat/internal/shared"
)

// ProfileStore reads the persisted role tag for a user. Implementations
// must distinguish "no role assigned" (found=false, nil error) from a
// transient store failure (non-nil error).
type ProfileStore interface {
	GetRoleTag(ctx context.Context, userID uuid.UUID) (tag string, found bool, err error)
}

// cacheNone marks a cached "no role assigned" result.
const cacheNone = "!none"

// Cache keeps resolved role tags in Redis so repeated checks within a
// session do not hit the profile store.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(userID uuid.UUID) string {
	return "authz:role:" + userID.String()
}

// Get returns the cached tag for the user, if any.
func (c *Cache) Get(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

// Set stores the tag for the user.
func (c *Cache) Set(ctx context.Context, userID uuid.UUID, tag string) error {
	return c.client.Set(ctx, c.key(userID), tag, c.ttl).Err()
}

// Del drops the cached tag for the user.
func (c *Cache) Del(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}

// Resolver maps a user identity to its current role definition. It fails
// closed: an absent or unrecognised tag yields a nil role and full-deny
// semantics downstream, never a default role.
type Resolver struct {
	catalog *roles.Catalog
	store   ProfileStore
	cache   *Cache
	logger  *slog.Logger
}

// NewResolver constructs a Resolver. cache may be nil, in which case every
// resolution reads the profile store.
func NewResolver(catalog *roles.Catalog, store ProfileStore, cache *Cache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{catalog: catalog, store: store, cache: cache, logger: logger}
}

// Resolve returns the user's role, or nil when no role is assigned.
// A store failure returns an error wrapping shared.ErrLookupFailed and
// must never be collapsed into "no role" by callers that can retry.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) (*roles.Role, error) {
	if userID == uuid.Nil {
		return nil, nil
	}

	if r.cache != nil {
		if tag, hit, err := r.cache.Get(ctx, userID); err != nil {
			r.logger.Warn("role cache read", slog.Any("error", err))
		} else if hit {
			return r.fromTag(userID, tag), nil
		}
	}

	tag, found, err := r.store.GetRoleTag(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve role for %s: %w: %v", userID, shared.ErrLookupFailed, err)
	}
	if !found || tag == "" {
		tag = cacheNone
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, userID, tag); err != nil {
			r.logger.Warn("role cache write", slog.Any("error", err))
		}
	}
	return r.fromTag(userID, tag), nil
}

// Invalidate drops any cached resolution for the user. Called on
// role-change events so the next resolution reads the latest tag.
func (r *Resolver) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, userID)
}

func (r *Resolver) fromTag(userID uuid.UUID, tag string) *roles.Role {
	if tag == cacheNone || tag == "" {
		return nil
	}
	role, err := r.catalog.ByTag(roles.Tag(tag))
	if err != nil {
		// Stored tag outside the enumeration: no role, not a default one.
		r.logger.Warn("unrecognised role tag",
			slog.String("user_id", userID.String()),
			slog.String("tag", tag))
		return nil
	}
	return role
}
