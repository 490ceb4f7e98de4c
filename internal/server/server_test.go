package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/playperu/handover/internal/database"
	"github.com/playperu/handover/internal/migrations"
	"github.com/playperu/handover/internal/session"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// identity keeps group A in catalog order.
func identity(n int) int { return n - 1 }

type testEnv struct {
	clock    *session.ManualClock
	sessions *Registry
	runs     *SQLiteStore
	board    *MemoryLeaderboard
	handler  http.Handler
}

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

func newTestEnv(t *testing.T, creds Credentials) *testEnv {
	t.Helper()
	env := &testEnv{
		clock: session.NewManualClock(t0),
		runs:  setupStore(t),
		board: NewMemoryLeaderboard(),
	}
	env.sessions = NewRegistry(slog.Default(), NewBroker(), 30*time.Minute,
		WithSessionClock(env.clock), WithShuffle(identity))
	t.Cleanup(env.sessions.CloseAll)

	arch := NewArchiver(slog.Default(), env.runs, env.board)
	arch.now = env.clock.Now

	srv := New("", slog.Default(), Deps{
		Sessions:    env.sessions,
		Archive:     arch,
		Runs:        env.runs,
		Leaderboard: env.board,
		Researcher:  creds,
	}, nil)
	env.handler = srv.Handler()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) create(t *testing.T, group, participant string) SessionResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/sessions", CreateSessionRequest{Group: group, Participant: participant})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode[SessionResponse](t, w)
}

func (e *testEnv) signal(t *testing.T, id, sig string) session.Snapshot {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/sessions/"+id+"/"+sig, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("%s: expected 200, got %d: %s", sig, w.Code, w.Body.String())
	}
	return decode[SessionResponse](t, w).State
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return v
}

// completeGroupB reacts after 2 s in each of the three generic scenarios.
func (e *testEnv) completeGroupB(t *testing.T, id string) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	for range 3 {
		e.signal(t, id, "start")
		e.clock.Advance(2 * time.Second)
		e.signal(t, id, "take-control")
		snap = e.signal(t, id, "resume")
	}
	return snap
}
