package tasks

import "encoding/json"

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Task is one unit of simulated background work. It lives in the broker's
// result backend, never in the relational store, and ages out via TTL.
type Task struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Status    Status          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Attempts  int             `json:"attempts"`
	CreatedAt int64           `json:"created_at"`
	UpdatedAt int64           `json:"updated_at"`
}

// Ready reports whether the task has reached a terminal state. A permanent
// failure is still a readable result: its Result holds an error descriptor.
func (t *Task) Ready() bool {
	return t.Status == StatusSuccess || t.Status == StatusFailure
}
