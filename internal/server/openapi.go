package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/handover/internal/handler/health"
	"github.com/playperu/handover/internal/handover"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type sessionPath struct {
	ID string `path:"id"`
}

type signalPath struct {
	ID     string `path:"id"`
	Signal string `path:"signal" enum:"start,take-control,resume,dismiss,retry"`
}

type leaderboardQuery struct {
	Group string `query:"group" enum:"A,B" required:"true"`
	Limit int    `query:"limit" minimum:"1" maximum:"100" default:"10"`
}

type runsQuery struct {
	Group  string `query:"group" enum:"A,B"`
	Format string `query:"format" enum:"json,csv" default:"json"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Handover API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the AV handover reaction-time experiment.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/sessions
	postSession, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	postSession.SetSummary("Start session")
	postSession.SetDescription("Creates a participant session for group A or B. Group A scenarios are shuffled.")
	postSession.AddReqStructure(CreateSessionRequest{})
	postSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postSession)

	// GET /api/sessions/{id}
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}")
	getSession.SetSummary("Get session")
	getSession.SetDescription("Returns the current session snapshot with countdowns sampled now.")
	getSession.AddReqStructure(sessionPath{})
	getSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// POST /api/sessions/{id}/{signal}
	postSignal, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{id}/{signal}")
	postSignal.SetSummary("Send signal")
	postSignal.SetDescription("Applies a participant signal. Signals not valid in the current phase are rejected and change nothing.")
	postSignal.AddReqStructure(signalPath{})
	postSignal.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSignal.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postSignal.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postSignal.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postSignal.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusGone))
	_ = r.AddOperation(postSignal)

	// DELETE /api/sessions/{id}
	deleteSession, _ := r.NewOperationContext(http.MethodDelete, "/api/sessions/{id}")
	deleteSession.SetSummary("Close session")
	deleteSession.SetDescription("Returns to the menu: cancels any countdown and forgets the session.")
	deleteSession.AddReqStructure(sessionPath{})
	deleteSession.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteSession)

	// GET /api/sessions/{id}/results
	getResults, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}/results")
	getResults.SetSummary("Session results")
	getResults.SetDescription("Returns the reaction-time summary once every scenario is completed.")
	getResults.AddReqStructure(sessionPath{})
	getResults.AddRespStructure(handover.Summary{}, openapi.WithHTTPStatus(http.StatusOK))
	getResults.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getResults.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(getResults)

	// GET /api/sessions/{id}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of snapshots and speech events.")
	getEvents.AddReqStructure(sessionPath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/sessions/{id}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}/ws")
	getWS.SetSummary("Session WebSocket")
	getWS.SetDescription(`Pushes session events and accepts {"signal": "..."} messages.`)
	getWS.AddReqStructure(sessionPath{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// GET /api/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Fastest archived average reaction times for a group.")
	getBoard.AddReqStructure(leaderboardQuery{})
	getBoard.AddRespStructure(LeaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getBoard)

	// GET /api/admin/runs
	listRuns, _ := r.NewOperationContext(http.MethodGet, "/api/admin/runs")
	listRuns.SetSummary("Export runs")
	listRuns.SetDescription("Archived runs as JSON or CSV. Requires researcher basic auth.")
	listRuns.AddReqStructure(runsQuery{})
	listRuns.AddRespStructure([]Run{}, openapi.WithHTTPStatus(http.StatusOK))
	listRuns.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	listRuns.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	_ = r.AddOperation(listRuns)

	// GET /api/admin/runs/{id}
	getRun, _ := r.NewOperationContext(http.MethodGet, "/api/admin/runs/{id}")
	getRun.SetSummary("Get run")
	getRun.SetDescription("One archived run with its reactions. Requires researcher basic auth.")
	getRun.AddReqStructure(sessionPath{})
	getRun.AddRespStructure(Run{}, openapi.WithHTTPStatus(http.StatusOK))
	getRun.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getRun.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getRun)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
