package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/chefbawss/backend/internal/config"
	"github.com/chefbawss/backend/pkg/logger"
	"github.com/hibiken/asynq"
)

const (
	TaskTypeEmail = "email:send"
)

// Email kinds carried by an EmailTask.
const (
	EmailKindChefInvite      = "chef_invite"
	EmailKindPasswordReset   = "password_reset"
	EmailKindEventAssignment = "event_assignment"
	EmailKindEventUpdate     = "event_update"
)

// EmailTask is an outbound email job. Built after the primary transaction
// commits; delivery is best-effort and never reported back to the caller.
type EmailTask struct {
	Kind             string `json:"kind"`
	To               string `json:"to"`
	RecipientName    string `json:"recipient_name"`
	OrganizationName string `json:"organization_name,omitempty"`
	Token            string `json:"token,omitempty"`

	// Event fields, set for assignment/update kinds.
	EventID    uint   `json:"event_id,omitempty"`
	EventName  string `json:"event_name,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	Date       string `json:"date,omitempty"`
	StartTime  string `json:"start_time,omitempty"`
	Location   string `json:"location,omitempty"`
	GuestCount int    `json:"guest_count,omitempty"`
	ChefPay    string `json:"chef_pay,omitempty"`
}

// TaskQueue defines the interface for email task processing
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *EmailTask) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global task queue instance
var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalTaskQueue = queue
			}
		} else {
			logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

// GetTaskQueue returns the global task queue instance
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Test connection by pinging Redis
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	_, err := inspector.Queues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Enqueue adds an email task to the async queue
func (q *AsyncQueue) Enqueue(task *EmailTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeEmail, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Task enqueued: id=%s, kind=%s", info.ID, task.Kind)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue implements TaskQueue with in-process delivery (no Redis)
type SyncQueue struct {
	processor func(context.Context, *EmailTask) error
}

// NewSyncQueue creates a new synchronous queue
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

// SetProcessor sets the function to process tasks in-process
func (q *SyncQueue) SetProcessor(processor func(context.Context, *EmailTask) error) {
	q.processor = processor
}

// Enqueue processes the task in a goroutine so the request is never
// blocked on SMTP.
func (q *SyncQueue) Enqueue(task *EmailTask) error {
	if q.processor == nil {
		logger.Warnf("[SyncQueue] no processor set, task dropped: kind=%s", task.Kind)
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, task); err != nil {
			logger.Warnf("[SyncQueue] Task processing failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncQueue) Close() error {
	return nil
}
