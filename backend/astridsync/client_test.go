package astridsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *httpClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newHTTPClient(Config{BaseURL: srv.URL}, "test-token")
}

func TestListTasks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization header = %q", got)
		}
		if r.Method != http.MethodGet || r.URL.Path != "/tasks" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(listTasksResponse{
			Tasks: []wireTask{{ID: "1", Name: "Buy milk"}},
		})
	})

	tasks, err := c.listTasks(context.Background())
	if err != nil {
		t.Fatalf("listTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Name != "Buy milk" {
		t.Errorf("listTasks() = %+v", tasks)
	}
}

func TestListTasksError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errorResponse{Message: "database unavailable"})
	})

	_, err := c.listTasks(context.Background())
	if err == nil {
		t.Fatal("listTasks() expected error, got nil")
	}
}

func TestCreateTask(t *testing.T) {
	var gotReq createTaskRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createTaskResponse{ID: "new-1"})
	})

	req := createTaskRequest{Name: "Buy milk", IdempotencyKey: "abc-123"}
	resp, err := c.createTask(context.Background(), req)
	if err != nil {
		t.Fatalf("createTask() error = %v", err)
	}
	if resp.ID != "new-1" {
		t.Errorf("createTask() ID = %q, want new-1", resp.ID)
	}
	if gotReq.IdempotencyKey != "abc-123" {
		t.Errorf("server saw idempotency key %q", gotReq.IdempotencyKey)
	}
}

func TestPutTask(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tasks/42" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.putTask(context.Background(), "42", putTaskRequest{Name: "Updated"}); err != nil {
		t.Fatalf("putTask() error = %v", err)
	}
}

func TestDeleteTaskNotFoundIsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	if err := c.deleteTask(context.Background(), "missing"); err != nil {
		t.Errorf("deleteTask() error = %v, want nil for 404", err)
	}
}

func TestGetTask(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks/7" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(wireTask{ID: "7", Name: "Write report"})
	})

	task, err := c.getTask(context.Background(), "7")
	if err != nil {
		t.Fatalf("getTask() error = %v", err)
	}
	if task.Name != "Write report" {
		t.Errorf("getTask() = %+v", task)
	}
}
