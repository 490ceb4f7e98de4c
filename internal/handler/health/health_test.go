package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/handover/internal/handler/health"
)

func ok(context.Context) error { return nil }

func failing(msg string) health.CheckerFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]health.Checker
		wantStatus int
		wantOver   string
		wantBody   map[string]string
	}{
		{
			name:       "no dependencies",
			checks:     map[string]health.Checker{},
			wantStatus: http.StatusOK,
			wantOver:   "ok",
			wantBody:   map[string]string{},
		},
		{
			name: "all healthy",
			checks: map[string]health.Checker{
				"sqlite": health.CheckerFunc(ok),
				"redis":  health.CheckerFunc(ok),
			},
			wantStatus: http.StatusOK,
			wantOver:   "ok",
			wantBody:   map[string]string{"sqlite": "ok", "redis": "ok"},
		},
		{
			name: "redis down",
			checks: map[string]health.Checker{
				"sqlite": health.CheckerFunc(ok),
				"redis":  failing("refused"),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantOver:   "degraded",
			wantBody:   map[string]string{"sqlite": "ok", "redis": "error"},
		},
		{
			name: "both down",
			checks: map[string]health.Checker{
				"sqlite": failing("locked"),
				"redis":  failing("refused"),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantOver:   "degraded",
			wantBody:   map[string]string{"sqlite": "error", "redis": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(slog.Default(), tt.checks)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body health.Response
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if body.Status != tt.wantOver {
				t.Errorf("overall = %q, want %q", body.Status, tt.wantOver)
			}
			if len(body.Checks) != len(tt.wantBody) {
				t.Errorf("checks = %v, want %d entries", body.Checks, len(tt.wantBody))
			}
			for name, want := range tt.wantBody {
				if got := body.Checks[name].Status; got != want {
					t.Errorf("%s status = %q, want %q", name, got, want)
				}
			}
		})
	}
}
