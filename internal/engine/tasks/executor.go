package tasks

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"time"

	"hookstash/internal/platform/config"
)

const (
	// drawMax and failThreshold model a flaky downstream call: a uniform
	// draw in [0, drawMax] at or below failThreshold is a transient failure.
	drawMax       = 50
	failThreshold = 10

	maxRetriesMessage = "max retries exceeded"
)

type executorState int

const (
	stateAttempting executorState = iota
	stateWaitingRetry
	stateSucceeded
	stateFailedPermanently
)

// Outcome is the terminal value of one task execution, retries included.
// A permanently failed task still carries a Result so pollers can read it.
type Outcome struct {
	Result   json.RawMessage
	Failed   bool
	Attempts int
}

// Executor performs the simulated unit of work with bounded retries.
// Rand and Sleep are swappable so tests can force draws and skip delays.
type Executor struct {
	WorkDelay   time.Duration
	RetryDelay  time.Duration
	MaxAttempts int

	Rand  func(n int) int
	Sleep func(d time.Duration)
}

func NewExecutor(cfg config.TasksConfig) *Executor {
	e := &Executor{
		WorkDelay:   cfg.WorkDelay,
		RetryDelay:  cfg.RetryDelay,
		MaxAttempts: cfg.MaxAttempts,
		Rand:        rand.Intn,
		Sleep:       time.Sleep,
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = 5
	}
	return e
}

// Execute runs the work body until a terminal state is reached. Each
// attempt sleeps the work delay and draws anew; nothing is remembered
// across attempts beyond the counter.
func (e *Executor) Execute(payload json.RawMessage) Outcome {
	state := stateAttempting
	attempts := 0
	var result json.RawMessage

	for {
		switch state {
		case stateAttempting:
			attempts++
			e.Sleep(e.WorkDelay)

			draw := e.Rand(drawMax + 1)
			if draw <= failThreshold {
				if attempts >= e.MaxAttempts {
					state = stateFailedPermanently
				} else {
					state = stateWaitingRetry
				}
				continue
			}

			fingerprint, err := Fingerprint(payload)
			if err != nil {
				result, _ = json.Marshal(map[string]string{"error": err.Error()})
				return Outcome{Result: result, Failed: true, Attempts: attempts}
			}

			result, _ = json.Marshal(map[string]interface{}{
				"number":      draw,
				"fingerprint": fingerprint,
			})
			state = stateSucceeded

		case stateWaitingRetry:
			e.Sleep(e.RetryDelay)
			state = stateAttempting

		case stateSucceeded:
			return Outcome{Result: result, Attempts: attempts}

		case stateFailedPermanently:
			result, _ = json.Marshal(map[string]string{"error": maxRetriesMessage})
			return Outcome{Result: result, Failed: true, Attempts: attempts}
		}
	}
}

// Fingerprint is the md5 hex digest of the canonical JSON encoding of the
// payload. Decoding and re-marshalling normalizes whitespace and sorts
// object keys, so equal documents always digest identically.
func Fingerprint(payload json.RawMessage) (string, error) {
	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return "", err
	}

	canonical, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	sum := md5.Sum(canonical)
	return hex.EncodeToString(sum[:]), nil
}
