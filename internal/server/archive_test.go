package server

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/playperu/handover/internal/handover"
	"github.com/playperu/handover/internal/session"
)

func TestArchiveUsesCompletingSnapshot(t *testing.T) {
	r, clock := newTestRegistry(t, time.Hour)
	runs := setupStore(t)
	board := NewMemoryLeaderboard()
	arch := NewArchiver(slog.Default(), runs, board)
	ctx := context.Background()

	live, err := r.Create(handover.GroupA, "P-9")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mustSignal := func(sig session.Signal) session.Snapshot {
		t.Helper()
		snap, err := dispatch(ctx, live, sig, nil)
		if err != nil {
			t.Fatalf("%s: %v", sig, err)
		}
		return snap
	}

	var final session.Snapshot
	for i := range 4 {
		mustSignal(session.SignalStart)
		if i == 0 {
			clock.Advance(18 * time.Second)
			mustSignal(session.SignalRetry)
		}
		clock.Advance(time.Second)
		mustSignal(session.SignalTakeControl)
		final = mustSignal(session.SignalResume)
	}
	if final.Phase != session.PhaseCompleted {
		t.Fatalf("phase = %s, want completed", final.Phase)
	}

	// A back-to-menu landing before the archive must not empty the run.
	if _, err := live.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	arch.Archive(ctx, live, final)

	run, err := runs.GetRun(ctx, live.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Failures != 1 || len(run.Reactions) != 4 || run.Average != 1 {
		t.Errorf("run = %+v", run)
	}
	if run.Reactions[0].Scenario != "Construction Zone" || run.Reactions[0].Seconds != 1 {
		t.Errorf("first reaction = %+v", run.Reactions[0])
	}
	if top, _ := board.Top(ctx, handover.GroupA, 10); len(top) != 1 || top[0].Participant != "P-9" {
		t.Errorf("leaderboard = %+v", top)
	}
}

func TestArchiveIgnoresIncompleteSnapshot(t *testing.T) {
	r, _ := newTestRegistry(t, time.Hour)
	runs := setupStore(t)
	arch := NewArchiver(slog.Default(), runs, NewMemoryLeaderboard())
	ctx := context.Background()

	live, _ := r.Create(handover.GroupB, "")
	snap, _ := live.Start()
	arch.Archive(ctx, live, snap)

	if _, err := runs.GetRun(ctx, live.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun = %v, want ErrNotFound", err)
	}
}
