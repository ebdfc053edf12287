package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RoleChangeChannel carries role-change notifications between the API
// replicas so every gate invalidates its state synchronously.
const RoleChangeChannel = "authz:role_changed"

// RoleChangeEvent describes a role assignment change.
type RoleChangeEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Tag    string    `json:"tag"`
}

// Publisher broadcasts role-change events over Redis pub/sub.
type Publisher struct {
	client *redis.Client
}

// NewPublisher constructs a Publisher.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishRoleChange broadcasts the event.
func (p *Publisher) PublishRoleChange(ctx context.Context, ev RoleChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("profiles: marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, RoleChangeChannel, payload).Err(); err != nil {
		return fmt.Errorf("profiles: publish event: %w", err)
	}
	return nil
}

// SubscribeRoleChanges invokes handler for every role-change event until
// the context is cancelled.
func SubscribeRoleChanges(ctx context.Context, client *redis.Client, logger *slog.Logger, handler func(context.Context, RoleChangeEvent)) error {
	sub := client.Subscribe(ctx, RoleChangeChannel)
	defer func() {
		if err := sub.Close(); err != nil && logger != nil {
			logger.Warn("close role-change subscription", slog.Any("error", err))
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev RoleChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				if logger != nil {
					logger.Warn("decode role-change event", slog.Any("error", err))
				}
				continue
			}
			handler(ctx, ev)
		}
	}
}
