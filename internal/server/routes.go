package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Handover API", "/openapi.json", "/docs"))

	r.Post("/api/sessions", handleCreateSession(deps.Sessions))
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Use(sessionMiddleware(deps.Sessions))
		r.Get("/", handleGetSession())
		r.Delete("/", handleDeleteSession(deps.Sessions))
		r.Get("/results", handleResults())
		r.Get("/events", handleEvents(deps.Sessions.Broker()))
		r.Get("/ws", handleWS(logger, deps.Sessions.Broker(), deps.Archive))
		r.Post("/{signal}", handleSignal(deps.Archive))
	})

	r.Get("/api/leaderboard", handleLeaderboard(deps.Leaderboard))

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(researcherAuth(deps.Researcher))
		r.Get("/runs", handleAdminRuns(deps.Runs))
		r.Get("/runs/{id}", handleAdminRun(deps.Runs))
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
