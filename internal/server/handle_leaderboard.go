package server

import (
	"net/http"
	"strconv"

	"github.com/playperu/handover/internal/handover"
)

// LeaderboardResponse is the response for GET /api/leaderboard.
type LeaderboardResponse struct {
	Group     handover.Group `json:"group"`
	Standings []Standing     `json:"standings"`
}

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

func handleLeaderboard(board Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		group, err := handover.ParseGroup(q.Get("group"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		limit := defaultLeaderboardLimit
		if raw := q.Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 1 || limit > maxLeaderboardLimit {
				writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
				return
			}
		}

		standings, err := board.Top(r.Context(), group, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, LeaderboardResponse{Group: group, Standings: standings})
	}
}
