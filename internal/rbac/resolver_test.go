package rbac

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/caveat-labs/caveat/internal/roles"
	"github.com/caveat-labs/caveat/internal/shared"
)

type stubStore struct {
	tags  map[uuid.UUID]string
	err   error
	calls int
}

func (s *stubStore) GetRoleTag(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	s.calls++
	if s.err != nil {
		return "", false, s.err
	}
	tag, ok := s.tags[userID]
	return tag, ok, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
}

func TestResolveAssignedRole(t *testing.T) {
	userID := uuid.New()
	store := &stubStore{tags: map[uuid.UUID]string{userID: "seller"}}
	resolver := NewResolver(roles.Default(), store, newTestCache(t), nil)

	role, err := resolver.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if role == nil || role.Tag != roles.TagSeller {
		t.Fatalf("expected seller role, got %+v", role)
	}
}

func TestResolveNoRoleFailsClosed(t *testing.T) {
	store := &stubStore{tags: map[uuid.UUID]string{}}
	resolver := NewResolver(roles.Default(), store, newTestCache(t), nil)

	role, err := resolver.Resolve(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("absent role must not be an error, got %v", err)
	}
	if role != nil {
		t.Fatalf("absent role must resolve to nil, got %+v", role)
	}
	// Derived checks over the nil role stay false and never panic.
	if IsAdmin(role) || HasPermission(role, "browse_gigs") {
		t.Fatalf("no-role user must have zero permissions")
	}
}

func TestResolveStoreFailure(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	resolver := NewResolver(roles.Default(), store, newTestCache(t), nil)

	role, err := resolver.Resolve(context.Background(), uuid.New())
	if !errors.Is(err, shared.ErrLookupFailed) {
		t.Fatalf("expected ErrLookupFailed, got %v", err)
	}
	if role != nil {
		t.Fatalf("failed lookup must not yield a role")
	}
}

func TestResolveUnknownTagFailsClosed(t *testing.T) {
	userID := uuid.New()
	store := &stubStore{tags: map[uuid.UUID]string{userID: "galactic_overlord"}}
	resolver := NewResolver(roles.Default(), store, newTestCache(t), nil)

	role, err := resolver.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("unknown tag degrades to no role, got error %v", err)
	}
	if role != nil {
		t.Fatalf("unknown tag must not produce a role")
	}
}

func TestResolveIdempotentAndCached(t *testing.T) {
	userID := uuid.New()
	store := &stubStore{tags: map[uuid.UUID]string{userID: "moderator"}}
	resolver := NewResolver(roles.Default(), store, newTestCache(t), nil)

	first, err := resolver.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := resolver.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolutions differ without a role change: %+v vs %+v", first, second)
	}
	if store.calls != 1 {
		t.Fatalf("expected one store read, got %d", store.calls)
	}
}

func TestInvalidateRefreshesResolution(t *testing.T) {
	userID := uuid.New()
	store := &stubStore{tags: map[uuid.UUID]string{userID: "support"}}
	resolver := NewResolver(roles.Default(), store, newTestCache(t), nil)

	if _, err := resolver.Resolve(context.Background(), userID); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	store.tags[userID] = "admin"
	if err := resolver.Invalidate(context.Background(), userID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	role, err := resolver.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("resolve after invalidate: %v", err)
	}
	if role == nil || role.Tag != roles.TagAdmin {
		t.Fatalf("expected refreshed admin role, got %+v", role)
	}
	if store.calls != 2 {
		t.Fatalf("expected two store reads, got %d", store.calls)
	}
}

func TestResolveNilUser(t *testing.T) {
	resolver := NewResolver(roles.Default(), &stubStore{}, nil, nil)
	role, err := resolver.Resolve(context.Background(), uuid.Nil)
	if err != nil || role != nil {
		t.Fatalf("nil user resolves to no role, got %+v %v", role, err)
	}
}

func TestResolveWithoutCacheReadsStoreEachTime(t *testing.T) {
	userID := uuid.New()
	store := &stubStore{tags: map[uuid.UUID]string{userID: "buyer"}}
	resolver := NewResolver(roles.Default(), store, nil, nil)

	for i := 0; i < 3; i++ {
		if _, err := resolver.Resolve(context.Background(), userID); err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
	}
	if store.calls != 3 {
		t.Fatalf("expected three store reads, got %d", store.calls)
	}
}
