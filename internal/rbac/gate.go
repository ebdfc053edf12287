package rbac

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caveat-labs/caveat/internal/roles"
)

// Decision is the outcome of a capability gate evaluation.
type Decision int

const (
	// DecisionPending means role resolution has not completed; consumers
	// must render a neutral state, never assume allow or deny.
	DecisionPending Decision = iota
	// DecisionAllow grants the requirement.
	DecisionAllow
	// DecisionDeny refuses the requirement.
	DecisionDeny
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	default:
		return "pending"
	}
}

// Requirement describes what a caller needs. Fields combine as a
// conjunction: a populated Role must match AND every populated permission
// clause must pass.
type Requirement struct {
	Permission string
	AnyOf      []string
	AllOf      []string
	Role       roles.Tag
}

func (req Requirement) empty() bool {
	return req.Permission == "" && len(req.AnyOf) == 0 && len(req.AllOf) == 0 && req.Role == ""
}

// malformed reports requirements that can never be satisfied legitimately:
// nothing requested, a role tag outside the enumeration, or permission
// clauses consisting solely of blanks.
func (req Requirement) malformed() bool {
	if req.empty() {
		return true
	}
	if req.Role != "" && !req.Role.Valid() {
		return true
	}
	if req.Permission != "" && normalize(req.Permission) == "" {
		return true
	}
	for _, list := range [][]string{req.AnyOf, req.AllOf} {
		if len(list) == 0 {
			continue
		}
		blank := true
		for _, p := range list {
			if normalize(p) != "" {
				blank = false
				break
			}
		}
		if blank {
			return true
		}
	}
	return false
}

// DecisionRecorder receives gate outcomes for observability.
type DecisionRecorder interface {
	RecordDecision(outcome string, elapsed time.Duration)
}

// Gate composes the resolver and the evaluator into a single decision.
// Per user it resolves at most once per cycle: after the first successful
// resolution the gate never returns Pending for that user again until
// Refresh is called by a role-change event.
type Gate struct {
	resolver *Resolver
	logger   *slog.Logger
	metrics  DecisionRecorder

	mu     sync.RWMutex
	states map[uuid.UUID]*roles.Role
}

// NewGate constructs a Gate. metrics may be nil.
func NewGate(resolver *Resolver, logger *slog.Logger, metrics DecisionRecorder) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
		states:   make(map[uuid.UUID]*roles.Role),
	}
}

// Evaluate decides the requirement for the user. A transient lookup
// failure yields DecisionPending together with the underlying error so the
// caller can retry or surface a transient state instead of silently
// denying.
func (g *Gate) Evaluate(ctx context.Context, userID uuid.UUID, req Requirement) (Decision, error) {
	start := time.Now()
	decision, err := g.evaluate(ctx, userID, req)
	if g.metrics != nil {
		g.metrics.RecordDecision(decision.String(), time.Since(start))
	}
	return decision, err
}

func (g *Gate) evaluate(ctx context.Context, userID uuid.UUID, req Requirement) (Decision, error) {
	if req.malformed() {
		g.logger.Warn("malformed gate requirement",
			slog.String("user_id", userID.String()),
			slog.String("role", string(req.Role)),
			slog.String("permission", req.Permission))
		return DecisionDeny, nil
	}
	if userID == uuid.Nil {
		return DecisionDeny, nil
	}

	role, resolved := g.state(userID)
	if !resolved {
		var err error
		role, err = g.resolver.Resolve(ctx, userID)
		if err != nil {
			return DecisionPending, err
		}
		g.mu.Lock()
		// A concurrent evaluation may have resolved already; both reads
		// are idempotent, either result is consistent.
		g.states[userID] = role
		g.mu.Unlock()
	}
	decision := decide(role, req)
	if decision == DecisionDeny && req.Permission != "" && !g.resolver.catalog.Defines(req.Permission) {
		// Nothing in the catalog grants this permission; the
		// requirement itself is likely a typo on the caller's side.
		g.logger.Debug("requirement references unknown permission",
			slog.String("permission", req.Permission))
	}
	return decision, nil
}

// Refresh drops the user's resolved state so the next evaluation re-enters
// Pending and resolves afresh. Only role-change events should call this.
func (g *Gate) Refresh(ctx context.Context, userID uuid.UUID) {
	g.mu.Lock()
	delete(g.states, userID)
	g.mu.Unlock()
	if err := g.resolver.Invalidate(ctx, userID); err != nil {
		g.logger.Warn("invalidate role cache", slog.Any("error", err))
	}
}

// HasPermission is a direct programmatic check. Errors degrade to false.
func (g *Gate) HasPermission(ctx context.Context, userID uuid.UUID, name string) bool {
	d, _ := g.Evaluate(ctx, userID, Requirement{Permission: name})
	return d == DecisionAllow
}

// HasAnyPermission is a direct programmatic check. Errors degrade to false.
func (g *Gate) HasAnyPermission(ctx context.Context, userID uuid.UUID, names ...string) bool {
	d, _ := g.Evaluate(ctx, userID, Requirement{AnyOf: names})
	return d == DecisionAllow
}

// HasRole is a direct programmatic check. Errors degrade to false.
func (g *Gate) HasRole(ctx context.Context, userID uuid.UUID, tag roles.Tag) bool {
	d, _ := g.Evaluate(ctx, userID, Requirement{Role: tag})
	return d == DecisionAllow
}

// Role returns the user's resolved role, resolving it if needed.
func (g *Gate) Role(ctx context.Context, userID uuid.UUID) (*roles.Role, error) {
	if role, resolved := g.state(userID); resolved {
		return role, nil
	}
	role, err := g.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.states[userID] = role
	g.mu.Unlock()
	return role, nil
}

func (g *Gate) state(userID uuid.UUID) (*roles.Role, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	role, ok := g.states[userID]
	return role, ok
}

func decide(role *roles.Role, req Requirement) Decision {
	if req.Role != "" && !HasRoleTag(role, req.Role) {
		return DecisionDeny
	}
	if req.Permission != "" && !HasPermission(role, req.Permission) {
		return DecisionDeny
	}
	if len(req.AnyOf) > 0 && !HasAny(role, req.AnyOf) {
		return DecisionDeny
	}
	if len(req.AllOf) > 0 && !HasAll(role, req.AllOf) {
		return DecisionDeny
	}
	return DecisionAllow
}
