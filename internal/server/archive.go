package server

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/playperu/handover/internal/session"
	"github.com/playperu/handover/internal/telemetry"
)

// Archiver records completed runs in the archive and on the leaderboard.
// Failures are logged and never affect the session.
type Archiver struct {
	runs   RunStore
	board  Leaderboard
	logger *slog.Logger
	now    func() time.Time
}

func NewArchiver(logger *slog.Logger, runs RunStore, board Leaderboard) *Archiver {
	return &Archiver{runs: runs, board: board, logger: logger, now: time.Now}
}

// Archive records the run described by snap, the snapshot committed by the
// transition that completed the session. The controller is not read again,
// so a close racing the archive cannot empty the run.
func (a *Archiver) Archive(ctx context.Context, live *Live, snap session.Snapshot) {
	if snap.Phase != session.PhaseCompleted || snap.Summary == nil {
		a.logger.Error("archiving run", "session", live.ID, "error", "session not completed", "phase", snap.Phase)
		return
	}
	summary := snap.Summary

	run := Run{
		ID:          live.ID,
		Group:       snap.Group,
		Participant: live.Participant,
		CompletedAt: a.now(),
		Failures:    snap.Failures,
		Average:     summary.Average,
		Fastest:     summary.Fastest,
		Slowest:     summary.Slowest,
		Tier:        summary.Tier,
		Reactions:   snap.Records,
	}

	if err := a.runs.SaveRun(ctx, run); err != nil {
		a.logger.Error("archiving run", "session", live.ID, "error", err)
		return
	}
	err := a.board.Add(ctx, run.Group, Standing{RunID: run.ID, Participant: run.Participant, Average: run.Average})
	if err != nil {
		a.logger.Error("updating leaderboard", "session", live.ID, "error", err)
	}
	a.logger.Info("run archived", "session", live.ID, "group", run.Group, "average", run.Average, "tier", run.Tier)
}

// dispatch applies sig to the session inside a span and archives the run
// when the signal completes the catalog.
func dispatch(ctx context.Context, live *Live, sig session.Signal, arch *Archiver) (session.Snapshot, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "session."+string(sig), trace.WithAttributes(
		attribute.String("session.id", live.ID),
		attribute.String("session.group", string(live.Group())),
	))
	defer span.End()

	snap, err := live.Signal(sig)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return snap, err
	}
	span.SetAttributes(
		attribute.String("session.phase", string(snap.Phase)),
		attribute.Int("session.scenario", snap.ScenarioIndex),
	)

	if sig == session.SignalResume && snap.Phase == session.PhaseCompleted && arch != nil {
		arch.Archive(ctx, live, snap)
	}
	return snap, nil
}
