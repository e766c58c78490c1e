package astridsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gosynctasks/reconcile"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Name: "work", BaseURL: "https://sync.example.com"}, false},
		{"missing name", Config{BaseURL: "https://sync.example.com"}, true},
		{"missing base url", Config{Name: "work"}, true},
		{"bad url", Config{Name: "work", BaseURL: "not-a-url"}, true},
		{"negative timeout", Config{Name: "work", BaseURL: "https://sync.example.com", Timeout: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigTimeoutDefault(t *testing.T) {
	cfg := Config{Name: "work", BaseURL: "https://sync.example.com"}
	if got := cfg.timeout(); got != 30*time.Second {
		t.Errorf("timeout() = %v, want 30s", got)
	}
	cfg.Timeout = 5 * time.Second
	if got := cfg.timeout(); got != 5*time.Second {
		t.Errorf("timeout() = %v, want 5s", got)
	}
}

func TestUnixPtrRoundTrip(t *testing.T) {
	if got := unixPtr(nil); got != nil {
		t.Errorf("unixPtr(nil) = %v, want nil", got)
	}
	if got := fromUnixPtr(nil); got != nil {
		t.Errorf("fromUnixPtr(nil) = %v, want nil", got)
	}

	now := time.Now().Truncate(time.Second).UTC()
	sec := unixPtr(&now)
	if sec == nil {
		t.Fatal("unixPtr() returned nil for non-nil input")
	}
	back := fromUnixPtr(sec)
	if back == nil || !back.Equal(now) {
		t.Errorf("round trip = %v, want %v", back, now)
	}
}

func TestToProxy(t *testing.T) {
	w := wireTask{
		ID:      "99",
		Name:    "Call plumber",
		Notes:   "about the leak",
		Tags:    []string{"home", "urgent"},
		Deleted: true,
	}
	p := toProxy(reconcile.ProviderID(1), w)
	if p.RemoteID != "99" || p.Name != "Call plumber" || !p.IsDeleted {
		t.Errorf("toProxy() = %+v", p)
	}
	if len(p.Tags) != 2 {
		t.Errorf("toProxy() tags = %v", p.Tags)
	}
}

func TestProviderIDFromNameIsStable(t *testing.T) {
	a := providerIDFromName("work")
	b := providerIDFromName("work")
	c := providerIDFromName("personal")
	if a != b {
		t.Errorf("providerIDFromName not stable: %v != %v", a, b)
	}
	if a == c {
		t.Error("providerIDFromName collided for distinct names")
	}
}

func TestAdapterCreateTaskGeneratesIdempotencyKey(t *testing.T) {
	var firstKey, secondKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createTaskRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if firstKey == "" {
			firstKey = req.IdempotencyKey
		} else {
			secondKey = req.IdempotencyKey
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createTaskResponse{ID: "new-1"})
	}))
	t.Cleanup(srv.Close)

	a := &Adapter{
		cfg:    Config{Name: "work", BaseURL: srv.URL},
		client: newHTTPClient(Config{BaseURL: srv.URL}, "test-token"),
	}

	if _, err := a.CreateTask(context.Background(), reconcile.LocalTask{Name: "Buy milk"}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := a.CreateTask(context.Background(), reconcile.LocalTask{Name: "Buy eggs"}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if firstKey == "" || secondKey == "" || firstKey == secondKey {
		t.Errorf("expected distinct non-empty idempotency keys, got %q and %q", firstKey, secondKey)
	}
}

func TestAdapterDeleteTaskIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	a := &Adapter{
		cfg:    Config{Name: "work", BaseURL: srv.URL},
		client: newHTTPClient(Config{BaseURL: srv.URL}, "test-token"),
	}

	err := a.DeleteTask(context.Background(), reconcile.SyncMapping{RemoteID: "gone"})
	if err != nil {
		t.Errorf("DeleteTask() error = %v, want nil for already-deleted remote task", err)
	}
}
