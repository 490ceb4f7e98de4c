package server

import (
	"context"
	"errors"
	"time"

	"github.com/playperu/handover/internal/handover"
)

var ErrNotFound = errors.New("not found")

// Run is the archived outcome of a completed session.
type Run struct {
	ID          string                    `json:"id"`
	Group       handover.Group            `json:"group"`
	Participant string                    `json:"participant"`
	CompletedAt time.Time                 `json:"completedAt"`
	Failures    int                       `json:"failures"`
	Average     float64                   `json:"average"`
	Fastest     float64                   `json:"fastest"`
	Slowest     float64                   `json:"slowest"`
	Tier        handover.Tier             `json:"tier"`
	Reactions   []handover.ReactionRecord `json:"reactions"`
}

// RunStore archives completed runs for researchers.
type RunStore interface {
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRuns returns runs oldest first. An empty group lists all groups.
	ListRuns(ctx context.Context, group handover.Group) ([]Run, error)
}
