package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pasuper/supercron/pkg/config"
)

// stubOperations records which jobs ran and signals on each run.
type stubOperations struct {
	mu   sync.Mutex
	runs []string
	done chan string
}

func newStubOperations() *stubOperations {
	return &stubOperations{done: make(chan string, 8)}
}

func (s *stubOperations) record(job string) error {
	s.mu.Lock()
	s.runs = append(s.runs, job)
	s.mu.Unlock()
	s.done <- job
	return nil
}

func (s *stubOperations) UpdatePriceLabels(context.Context) error { return s.record("price") }
func (s *stubOperations) UpdateQuantityLabels(context.Context) error {
	return s.record("qty")
}
func (s *stubOperations) ExportOffline(context.Context) error { return s.record("offline") }
func (s *stubOperations) UpdateUnknownLocations(context.Context) error {
	return s.record("unknown")
}
func (s *stubOperations) CheckInventoryDiffs(context.Context) error { return s.record("diff") }

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:     config.EnvDevelopment,
		APIVersion: "v1",
		DB: config.DatabaseConfig{
			Host:              "localhost",
			Port:              3306,
			DatabasePrimary:   "inventory",
			DatabaseSecondary: "catalog",
		},
	}
}

func TestHandleHealth(t *testing.T) {
	handler := NewHandler(newStubOperations(), testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["environment"] != "development" {
		t.Errorf("environment field = %v", body["environment"])
	}
	db, ok := body["database"].(map[string]interface{})
	if !ok {
		t.Fatal("database block missing")
	}
	if db["primary"] != "inventory" || db["secondary"] != "catalog" {
		t.Errorf("database block = %v", db)
	}
}

func TestHandleHealth_MethodNotAllowed(t *testing.T) {
	handler := NewHandler(newStubOperations(), testConfig())

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestManualTriggers(t *testing.T) {
	tests := []struct {
		path string
		job  string
	}{
		{"/manual/update_price_label", "price"},
		{"/manual/update_qty_label", "qty"},
		{"/manual/offline_inv", "offline"},
		{"/manual/unknown_inv", "unknown"},
		{"/manual/diff_inv", "diff"},
	}

	for _, tt := range tests {
		t.Run(tt.job, func(t *testing.T) {
			ops := newStubOperations()
			handler := NewHandler(ops, testConfig())

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}

			select {
			case job := <-ops.done:
				if job != tt.job {
					t.Errorf("ran job %q, want %q", job, tt.job)
				}
			case <-time.After(time.Second):
				t.Fatal("job never ran")
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	handler := NewHandler(newStubOperations(), testConfig())

	req := httptest.NewRequest(http.MethodGet, "/manual/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	var resp ResponseError
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Error != "Not found" {
		t.Errorf("error field = %q", resp.Error)
	}
}
