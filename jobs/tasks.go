package jobs

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeRoleSync is the task type for durable role-change fan-out.
	TaskTypeRoleSync = "authz:role_sync"
	// TaskTypeCatalogDrift is the task type for the nightly scan that
	// reports stored role tags outside the catalog enumeration.
	TaskTypeCatalogDrift = "authz:catalog_drift"
)

// RoleSyncPayload describes a role assignment change to fan out.
type RoleSyncPayload struct {
	UserID  uuid.UUID `json:"user_id"`
	Tag     string    `json:"tag"`
	ActorID uuid.UUID `json:"actor_id"`
}

// NewRoleSyncTask constructs an Asynq task.
func NewRoleSyncTask(payload RoleSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRoleSync, data), nil
}

// NewCatalogDriftTask constructs the scheduled drift-scan task.
func NewCatalogDriftTask() *asynq.Task {
	return asynq.NewTask(TaskTypeCatalogDrift, nil)
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueRoleSync enqueues a role-sync task.
func (c *Client) EnqueueRoleSync(ctx context.Context, payload RoleSyncPayload) (*asynq.TaskInfo, error) {
	task, err := NewRoleSyncTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}
