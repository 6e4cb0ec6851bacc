package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "hookstash/internal/api/context"
	"hookstash/internal/engine/tasks"
	"hookstash/internal/pkg/errors"
)

type TaskHandler struct {
	broker tasks.Broker
}

func NewTaskHandler(broker tasks.Broker) *TaskHandler {
	return &TaskHandler{broker: broker}
}

// Get reports the current state of a task without blocking. Unknown ids are
// treated as not-ready, never as errors: the backend may simply not have
// materialized the task yet. No ownership check is performed.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("task_id")

	task, err := h.broker.Get(r.Context(), id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Result backend error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if task == nil || !task.Ready() {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "pending"})
		return
	}

	json.NewEncoder(w).Encode(map[string]json.RawMessage{"result": task.Result})
}
