package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"hookstash/internal/engine/tasks"
)

func taskParams(id string) httprouter.Params {
	return httprouter.Params{{Key: "task_id", Value: id}}
}

func TestTaskHandler_Get(t *testing.T) {
	broker := tasks.NewMemoryBroker(16)
	handler := NewTaskHandler(broker)

	pending, err := broker.Enqueue(context.Background(), json.RawMessage(`{"a": 1}`))
	if err != nil {
		t.Fatalf("Failed to enqueue task: %v", err)
	}

	done, err := broker.Enqueue(context.Background(), json.RawMessage(`{"b": 2}`))
	if err != nil {
		t.Fatalf("Failed to enqueue task: %v", err)
	}
	done.Status = tasks.StatusSuccess
	done.Result = json.RawMessage(`{"number": 42, "fingerprint": "abc"}`)
	if err := broker.Update(context.Background(), done); err != nil {
		t.Fatalf("Failed to update task: %v", err)
	}

	t.Run("Unknown id is pending", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/api/v1/tasks/task_missing", nil, "usr_1", taskParams("task_missing"))
		w := httptest.NewRecorder()

		handler.Get(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("Expected status 202, got %d", w.Code)
		}
		var resp map[string]string
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp["status"] != "pending" {
			t.Errorf("Expected status pending, got %q", resp["status"])
		}
	})

	t.Run("Unfinished task is pending", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/api/v1/tasks/"+pending.ID, nil, "usr_1", taskParams(pending.ID))
		w := httptest.NewRecorder()

		handler.Get(w, req)

		if w.Code != http.StatusAccepted {
			t.Errorf("Expected status 202, got %d", w.Code)
		}
	})

	t.Run("Finished task returns result", func(t *testing.T) {
		req := authedRequest(http.MethodGet, "/api/v1/tasks/"+done.ID, nil, "usr_1", taskParams(done.ID))
		w := httptest.NewRecorder()

		handler.Get(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp struct {
			Result map[string]interface{} `json:"result"`
		}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Result["number"] != float64(42) {
			t.Errorf("Expected number 42, got %v", resp.Result["number"])
		}
	})

	t.Run("Failed task returns stored error as result", func(t *testing.T) {
		failed, err := broker.Enqueue(context.Background(), json.RawMessage(`{}`))
		if err != nil {
			t.Fatalf("Failed to enqueue task: %v", err)
		}
		failed.Status = tasks.StatusFailure
		failed.Result = json.RawMessage(`{"error": "max retries exceeded"}`)
		if err := broker.Update(context.Background(), failed); err != nil {
			t.Fatalf("Failed to update task: %v", err)
		}

		req := authedRequest(http.MethodGet, "/api/v1/tasks/"+failed.ID, nil, "usr_1", taskParams(failed.ID))
		w := httptest.NewRecorder()

		handler.Get(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp struct {
			Result map[string]interface{} `json:"result"`
		}
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Result["error"] != "max retries exceeded" {
			t.Errorf("Expected stored error message, got %v", resp.Result["error"])
		}
	})
}
