package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/handover/internal/handover"
	"github.com/playperu/handover/internal/session"
)

// CreateSessionRequest is the request body for POST /api/sessions.
type CreateSessionRequest struct {
	Group       string `json:"group"`
	Participant string `json:"participant"`
}

// SessionResponse describes a live session.
type SessionResponse struct {
	ID          string           `json:"id"`
	Participant string           `json:"participant"`
	State       session.Snapshot `json:"state"`
}

const maxParticipantLen = 80

func handleCreateSession(sessions *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		group, err := handover.ParseGroup(req.Group)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		participant := strings.TrimSpace(req.Participant)
		if len(participant) > maxParticipantLen {
			writeError(w, http.StatusBadRequest, "participant name too long")
			return
		}

		live, err := sessions.Create(group, participant)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, SessionResponse{
			ID:          live.ID,
			Participant: live.Participant,
			State:       live.Snapshot(),
		})
	}
}

func handleGetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		live := liveSession(r)
		writeJSON(w, http.StatusOK, SessionResponse{
			ID:          live.ID,
			Participant: live.Participant,
			State:       live.Snapshot(),
		})
	}
}

func handleSignal(arch *Archiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		live := liveSession(r)

		sig, err := session.ParseSignal(chi.URLParam(r, "signal"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if sig == session.SignalClose {
			writeError(w, http.StatusBadRequest, "use DELETE to close a session")
			return
		}

		snap, err := dispatch(r.Context(), live, sig, arch)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SessionResponse{
			ID:          live.ID,
			Participant: live.Participant,
			State:       snap,
		})
	}
}

// handleDeleteSession is the back-to-menu action.
func handleDeleteSession(sessions *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		live := liveSession(r)
		if err := sessions.Remove(live.ID); err != nil && !errors.Is(err, ErrNotFound) {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleResults() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := liveSession(r).Results()
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
