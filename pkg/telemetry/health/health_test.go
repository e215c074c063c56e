package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChecker_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		wantCode   int
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: "ready",
			wantCode:   http.StatusOK,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"metadata": func(context.Context) error { return nil },
				"cache":    func(context.Context) error { return nil },
			},
			wantStatus: "ready",
			wantCode:   http.StatusOK,
		},
		{
			name: "one unhealthy",
			checks: map[string]CheckFunc{
				"metadata": func(context.Context) error { return nil },
				"cache":    func(context.Context) error { return errors.New("connection refused") },
			},
			wantStatus: "degraded",
			wantCode:   http.StatusServiceUnavailable,
		},
		{
			name: "timeout",
			checks: map[string]CheckFunc{
				"metadata": func(ctx context.Context) error {
					<-ctx.Done()
					time.Sleep(10 * time.Millisecond)
					return nil
				},
			},
			wantStatus: "degraded",
			wantCode:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(50 * time.Millisecond)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check)
			}

			rec := httptest.NewRecorder()
			c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", rec.Code, tt.wantCode)
			}
			var got Status
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.Status, tt.wantStatus)
			}
			if len(got.Checks) != len(tt.checks) {
				t.Errorf("checks = %d, want %d", len(got.Checks), len(tt.checks))
			}
		})
	}
}

func TestChecker_Liveness(t *testing.T) {
	c := New(0)
	c.RegisterCheck("broken", func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("liveness code = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST code = %d, want 405", rec.Code)
	}
}

func TestChecker_ListChecks(t *testing.T) {
	c := New(0)
	c.RegisterCheck("storage", func(context.Context) error { return nil })
	c.RegisterCheck("metadata", func(context.Context) error { return nil })
	c.RegisterCheck("metadata", func(context.Context) error { return nil })

	got := c.ListChecks()
	if len(got) != 2 || got[0] != "metadata" || got[1] != "storage" {
		t.Errorf("ListChecks() = %v", got)
	}
}
