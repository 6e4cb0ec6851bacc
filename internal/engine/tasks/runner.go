package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner consumes the broker with a fixed pool of workers. One worker owns
// a task from dequeue to terminal state, so retries of a task are strictly
// sequential while distinct tasks run concurrently.
type Runner struct {
	broker   Broker
	executor *Executor
	workers  int
}

func NewRunner(broker Broker, executor *Executor, workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{broker: broker, executor: executor, workers: workers}
}

func (r *Runner) Start(ctx context.Context) {
	for i := 0; i < r.workers; i++ {
		go r.worker(ctx, i)
	}
	log.Info().Int("workers", r.workers).Msg("task runner started")
}

func (r *Runner) worker(ctx context.Context, id int) {
	for {
		task, err := r.broker.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Int("worker", id).Msg("dequeue failed")
			time.Sleep(time.Second)
			continue
		}
		r.process(ctx, id, task)
	}
}

func (r *Runner) process(ctx context.Context, workerID int, task *Task) {
	task.Status = StatusRunning
	if err := r.broker.Update(ctx, task); err != nil {
		log.Error().Err(err).Str("task_id", task.ID).Msg("failed to mark task running")
	}

	outcome := r.executor.Execute(task.Payload)

	task.Attempts = outcome.Attempts
	task.Result = outcome.Result
	if outcome.Failed {
		task.Status = StatusFailure
	} else {
		task.Status = StatusSuccess
	}

	if err := r.broker.Update(ctx, task); err != nil {
		log.Error().Err(err).Str("task_id", task.ID).Msg("failed to store task result")
		return
	}

	log.Info().
		Int("worker", workerID).
		Str("task_id", task.ID).
		Str("status", string(task.Status)).
		Int("attempts", task.Attempts).
		Msg("task finished")
}
