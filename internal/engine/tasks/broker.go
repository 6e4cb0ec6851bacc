package tasks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"hookstash/internal/platform/config"
)

// Broker is the task queue plus its result backend. Enqueue is
// fire-and-forget: it records the task as pending and returns immediately.
// Get resolves unknown ids to (nil, nil) so pollers see them as not ready.
type Broker interface {
	Enqueue(ctx context.Context, payload json.RawMessage) (*Task, error)
	Dequeue(ctx context.Context) (*Task, error)
	Get(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, task *Task) error
	Ping(ctx context.Context) error
}

func newTask(payload json.RawMessage) *Task {
	now := time.Now().Unix()
	return &Task{
		ID:        "task_" + uuid.New().String(),
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

const taskKeyPrefix = "hookstash:task:"

// RedisBroker stores task state as JSON under a per-task key with a TTL and
// feeds workers through a Redis list (LPUSH producer side, BRPOP consumer
// side). Only task ids travel on the list; state lives in the task key.
type RedisBroker struct {
	client   *redis.Client
	queueKey string
	ttl      time.Duration
}

func NewRedisBroker(rcfg config.RedisConfig, tcfg config.TasksConfig) *RedisBroker {
	rdb := redis.NewClient(&redis.Options{
		Addr:     rcfg.Addr,
		Password: rcfg.Password,
		DB:       rcfg.DB,
	})

	queueKey := tcfg.QueueKey
	if queueKey == "" {
		queueKey = "hookstash:queue"
	}
	ttl := tcfg.ResultTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	return &RedisBroker{client: rdb, queueKey: queueKey, ttl: ttl}
}

func (b *RedisBroker) taskKey(id string) string { return taskKeyPrefix + id }

func (b *RedisBroker) Enqueue(ctx context.Context, payload json.RawMessage) (*Task, error) {
	task := newTask(payload)

	data, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}

	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.taskKey(task.ID), data, b.ttl)
	pipe.LPush(ctx, b.queueKey, task.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return task, nil
}

func (b *RedisBroker) Dequeue(ctx context.Context) (*Task, error) {
	for {
		result, err := b.client.BRPop(ctx, 0, b.queueKey).Result()
		if err != nil {
			return nil, err
		}
		if len(result) < 2 {
			continue
		}

		task, err := b.Get(ctx, result[1])
		if err != nil {
			return nil, err
		}
		if task == nil {
			// task key aged out before a worker picked it up
			continue
		}
		return task, nil
	}
}

func (b *RedisBroker) Get(ctx context.Context, id string) (*Task, error) {
	data, err := b.client.Get(ctx, b.taskKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (b *RedisBroker) Update(ctx context.Context, task *Task) error {
	task.UpdatedAt = time.Now().Unix()
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, b.taskKey(task.ID), data, b.ttl).Err()
}

func (b *RedisBroker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// MemoryBroker is a channel-backed broker for tests and single-process runs.
type MemoryBroker struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	queue chan string
}

func NewMemoryBroker(size int) *MemoryBroker {
	return &MemoryBroker{
		tasks: make(map[string]*Task),
		queue: make(chan string, size),
	}
}

func (b *MemoryBroker) Enqueue(ctx context.Context, payload json.RawMessage) (*Task, error) {
	task := newTask(payload)

	b.mu.Lock()
	b.tasks[task.ID] = task.clone()
	b.mu.Unlock()

	select {
	case b.queue <- task.ID:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return task, nil
}

func (b *MemoryBroker) Dequeue(ctx context.Context) (*Task, error) {
	select {
	case id := <-b.queue:
		return b.Get(ctx, id)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *MemoryBroker) Get(ctx context.Context, id string) (*Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	task, ok := b.tasks[id]
	if !ok {
		return nil, nil
	}
	return task.clone(), nil
}

func (b *MemoryBroker) Update(ctx context.Context, task *Task) error {
	task.UpdatedAt = time.Now().Unix()

	b.mu.Lock()
	b.tasks[task.ID] = task.clone()
	b.mu.Unlock()
	return nil
}

func (b *MemoryBroker) Ping(ctx context.Context) error { return nil }

func (t *Task) clone() *Task {
	c := *t
	return &c
}
