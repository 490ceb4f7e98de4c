package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/playperu/handover/internal/session"
)

// readSSE returns the next event name and payload from the stream.
func readSSE(t *testing.T, sc *bufio.Scanner) (string, Event) {
	t.Helper()
	var name string
	var ev Event
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				t.Fatalf("decoding event: %v", err)
			}
		case line == "" && name != "":
			return name, ev
		}
	}
	t.Fatalf("stream ended: %v", sc.Err())
	return "", Event{}
}

func TestHandleEvents(t *testing.T) {
	env := newTestEnv(t, Credentials{})
	id := env.create(t, "A", "").ID

	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/sessions/"+id+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q", ct)
	}
	sc := bufio.NewScanner(resp.Body)

	name, ev := readSSE(t, sc)
	if name != EventSnapshot || ev.Snapshot == nil || ev.Snapshot.Phase != session.PhaseIdle {
		t.Fatalf("first event = %s %+v", name, ev)
	}

	env.signal(t, id, "start")

	name, ev = readSSE(t, sc)
	if name != EventSnapshot || ev.Snapshot.Phase != session.PhaseRunning || ev.Snapshot.Version != 1 {
		t.Fatalf("after start = %s %+v", name, ev.Snapshot)
	}
	name, ev = readSSE(t, sc)
	if name != EventSpeech || ev.Utterance == nil || ev.Utterance.Urgency != "low" {
		t.Fatalf("speech = %s %+v", name, ev.Utterance)
	}
	if ev.Utterance.Voice.Rate != 0.9 {
		t.Errorf("voice = %+v", ev.Utterance.Voice)
	}

	// Closing the session ends the stream.
	if w := env.do(t, http.MethodDelete, "/api/sessions/"+id, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	name, ev = readSSE(t, sc)
	if name != EventSnapshot || ev.Snapshot.Phase != session.PhaseClosed {
		t.Fatalf("last event = %s %+v", name, ev.Snapshot)
	}
	if sc.Scan() {
		t.Errorf("expected end of stream, got %q", sc.Text())
	}
}

func TestHandleEventsUnknownSession(t *testing.T) {
	env := newTestEnv(t, Credentials{})
	w := env.do(t, http.MethodGet, "/api/sessions/nope/events", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
