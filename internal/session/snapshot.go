package session

import (
	"fmt"
	"time"

	"github.com/playperu/handover/internal/handover"
)

// Phase is the controller's position in the session state machine.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhaseResumed Phase = "resumed"
	// PhaseManual is the participant declining to resume autonomy.
	PhaseManual    Phase = "manual"
	PhaseFailed    Phase = "failed"
	PhaseCompleted Phase = "completed"
	PhaseClosed    Phase = "closed"
)

// Overlay is the modal shown above the scene.
type Overlay string

const (
	OverlayNone          Overlay = "none"
	OverlayAwaitingStart Overlay = "awaiting-start"
	OverlayResume        Overlay = "resume"
	OverlayFailure       Overlay = "failure"
	OverlayResults       Overlay = "results"
)

// Signal is a discrete input raised by the presentation layer.
type Signal string

const (
	SignalStart       Signal = "start"
	SignalTakeControl Signal = "take-control"
	SignalResume      Signal = "resume"
	SignalDismiss     Signal = "dismiss"
	SignalRetry       Signal = "retry"
	SignalClose       Signal = "close"
)

func ParseSignal(s string) (Signal, error) {
	switch sig := Signal(s); sig {
	case SignalStart, SignalTakeControl, SignalResume, SignalDismiss, SignalRetry, SignalClose:
		return sig, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSignal, s)
}

// Rules are the per-group differences of the state machine.
type Rules struct {
	// FailOnTimeout ends a scenario in failure when its final stage expires.
	FailOnTimeout bool
	// ContextMessages selects stage-specific alert texts over generic ones.
	ContextMessages bool
	// DisplayCountdown, when positive, is a fixed presentation countdown
	// decoupled from the stage duration.
	DisplayCountdown time.Duration
}

func RulesFor(g handover.Group) Rules {
	if g == handover.GroupA {
		return Rules{FailOnTimeout: true, ContextMessages: true}
	}
	return Rules{DisplayCountdown: 10 * time.Second}
}

type ScenarioView struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Hazard handover.Hazard `json:"hazard"`
}

// Snapshot is a read-only copy of the session state after a transition.
type Snapshot struct {
	Version       uint64          `json:"version"`
	Group         handover.Group  `json:"group"`
	Phase         Phase           `json:"phase"`
	Overlay       Overlay         `json:"overlay"`
	ScenarioIndex int             `json:"scenarioIndex"`
	ScenarioCount int             `json:"scenarioCount"`
	StageIndex    int             `json:"stageIndex"`
	StageCount    int             `json:"stageCount"`
	Scenario      *ScenarioView   `json:"scenario,omitempty"`
	Stage         *handover.Stage `json:"stage,omitempty"`
	Alert         *handover.Alert `json:"alert,omitempty"`

	// Active is true while a stage countdown is armed.
	Active bool `json:"active"`
	// Expired is set when a final stage ran out without ending the scenario.
	Expired bool `json:"expired"`
	// Remaining is the countdown left on the current stage, in seconds.
	Remaining float64 `json:"remaining"`

	DisplayCountdown *int                      `json:"displayCountdown,omitempty"`
	Failures         int                       `json:"failures"`
	Records          []handover.ReactionRecord `json:"records"`
	Summary          *handover.Summary         `json:"summary,omitempty"`
	UpdatedAt        time.Time                 `json:"updatedAt"`
}
