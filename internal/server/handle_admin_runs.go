package server

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/handover/internal/handover"
)

var csvHeader = []string{
	"run_id", "group", "participant", "completed_at", "failures",
	"average", "fastest", "slowest", "tier",
	"position", "scenario", "seconds",
}

func handleAdminRuns(runs RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var group handover.Group
		if raw := q.Get("group"); raw != "" {
			g, err := handover.ParseGroup(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			group = g
		}

		list, err := runs.ListRuns(r.Context(), group)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		switch q.Get("format") {
		case "", "json":
			writeJSON(w, http.StatusOK, list)
		case "csv":
			writeRunsCSV(w, list)
		default:
			writeError(w, http.StatusBadRequest, "format must be json or csv")
		}
	}
}

func handleAdminRun(runs RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := runs.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

// writeRunsCSV emits one row per reaction, repeating the run columns.
func writeRunsCSV(w http.ResponseWriter, runs []Run) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="runs.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write(csvHeader)
	for _, run := range runs {
		head := []string{
			run.ID,
			string(run.Group),
			run.Participant,
			run.CompletedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(run.Failures),
			formatSeconds(run.Average),
			formatSeconds(run.Fastest),
			formatSeconds(run.Slowest),
			string(run.Tier),
		}
		for i, rec := range run.Reactions {
			cw.Write(append(head[:len(head):len(head)], strconv.Itoa(i), rec.Scenario, formatSeconds(rec.Seconds)))
		}
	}
	cw.Flush()
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
