package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/playperu/handover/internal/handover"
)

func TestHandleLeaderboard(t *testing.T) {
	env := newTestEnv(t, Credentials{})
	ctx := context.Background()
	for _, s := range []Standing{
		{RunID: "r1", Participant: "slow", Average: 4.2},
		{RunID: "r2", Participant: "fast", Average: 1.1},
		{RunID: "r3", Participant: "mid", Average: 2.5},
	} {
		env.board.Add(ctx, handover.GroupA, s)
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantIDs    []string
	}{
		{"default limit", "?group=A", http.StatusOK, []string{"r2", "r3", "r1"}},
		{"limited", "?group=a&limit=2", http.StatusOK, []string{"r2", "r3"}},
		{"empty group", "?group=B", http.StatusOK, []string{}},
		{"missing group", "", http.StatusBadRequest, nil},
		{"zero limit", "?group=A&limit=0", http.StatusBadRequest, nil},
		{"huge limit", "?group=A&limit=1000", http.StatusBadRequest, nil},
		{"junk limit", "?group=A&limit=ten", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/leaderboard"+tt.query, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantIDs == nil {
				return
			}

			resp := decode[LeaderboardResponse](t, w)
			if resp.Standings == nil {
				t.Fatal("standings must be an array")
			}
			if len(resp.Standings) != len(tt.wantIDs) {
				t.Fatalf("standings = %+v, want %v", resp.Standings, tt.wantIDs)
			}
			for i, id := range tt.wantIDs {
				if resp.Standings[i].RunID != id {
					t.Errorf("standings[%d] = %s, want %s", i, resp.Standings[i].RunID, id)
				}
			}
		})
	}
}
