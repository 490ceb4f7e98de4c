// Package session implements the experiment state machine: it walks a
// participant through a catalog of scenarios, owns the single stage
// countdown, records reaction times and handles failure and retry.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/playperu/handover/internal/handover"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrClosed            = errors.New("session closed")
	ErrUnknownSignal     = errors.New("unknown signal")
	ErrNotCompleted      = errors.New("session not completed")
)

// Controller drives one participant session. All transitions and timer
// firings are serialized on one mutex; at most one countdown is armed.
type Controller struct {
	group     handover.Group
	catalog   handover.Catalog
	rules     Rules
	clock     Clock
	logger    *slog.Logger
	notify    func(Snapshot)
	announcer Announcer

	mu       sync.Mutex
	phase    Phase
	overlay  Overlay
	scenario int
	stage    int
	failures int
	records  []handover.ReactionRecord
	expired  bool
	baseline time.Time
	timer    Timer
	// gen identifies the armed timer; a firing with a stale gen is dropped.
	gen        uint64
	version    uint64
	lastChange time.Time
}

type Option func(*Controller)

func WithClock(c Clock) Option { return func(ctl *Controller) { ctl.clock = c } }

func WithLogger(l *slog.Logger) Option { return func(ctl *Controller) { ctl.logger = l } }

func WithRules(r Rules) Option { return func(ctl *Controller) { ctl.rules = r } }

// WithNotifier registers fn to receive a snapshot after every transition.
// fn runs with the controller locked: it must not block or call back into
// the controller.
func WithNotifier(fn func(Snapshot)) Option { return func(ctl *Controller) { ctl.notify = fn } }

// WithAnnouncer registers the speech side channel.
func WithAnnouncer(a Announcer) Option { return func(ctl *Controller) { ctl.announcer = a } }

// New creates a controller awaiting the start of the first scenario. Rules
// default to RulesFor(group).
func New(group handover.Group, catalog handover.Catalog, opts ...Option) (*Controller, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	c := &Controller{
		group:   group,
		catalog: catalog,
		rules:   RulesFor(group),
		clock:   SystemClock{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		phase:   PhaseIdle,
		overlay: OverlayAwaitingStart,
	}
	for _, o := range opts {
		o(c)
	}
	c.lastChange = c.clock.Now()
	return c, nil
}

func (c *Controller) Group() handover.Group { return c.group }

func (c *Controller) Start() (Snapshot, error)       { return c.Signal(SignalStart) }
func (c *Controller) TakeControl() (Snapshot, error) { return c.Signal(SignalTakeControl) }
func (c *Controller) Resume() (Snapshot, error)      { return c.Signal(SignalResume) }
func (c *Controller) Dismiss() (Snapshot, error)     { return c.Signal(SignalDismiss) }
func (c *Controller) Retry() (Snapshot, error)       { return c.Signal(SignalRetry) }
func (c *Controller) Close() (Snapshot, error)       { return c.Signal(SignalClose) }

// Signal applies sig. When sig is not valid in the current phase the state
// is left untouched and the error wraps ErrInvalidTransition or ErrClosed.
func (c *Controller) Signal(sig Signal) (Snapshot, error) {
	c.mu.Lock()
	announce, err := c.transition(sig)
	if err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}
	snap := c.commitLocked(string(sig))
	c.mu.Unlock()

	if announce {
		c.announce(snap)
	}
	return snap, nil
}

// Snapshot returns the current state with derived countdowns sampled now.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Results returns the summary of a completed session.
func (c *Controller) Results() (handover.Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseCompleted {
		return handover.Summary{}, fmt.Errorf("%w: phase %s", ErrNotCompleted, c.phase)
	}
	return handover.Summarize(c.records), nil
}

// LastChange is the time of the most recent transition.
func (c *Controller) LastChange() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastChange
}

// transition mutates state for sig. It reports whether a stage countdown was
// armed. c.mu must be held.
func (c *Controller) transition(sig Signal) (bool, error) {
	if c.phase == PhaseClosed {
		return false, ErrClosed
	}

	switch sig {
	case SignalStart:
		if c.phase != PhaseIdle {
			return false, c.invalid(sig)
		}
		c.cancelPendingTimer()
		c.stage = 0
		c.enterRunning()
		return true, nil

	case SignalTakeControl:
		if c.phase != PhaseRunning {
			return false, c.invalid(sig)
		}
		c.cancelPendingTimer()
		elapsed := max(c.clock.Now().Sub(c.baseline).Seconds(), 0)
		c.records = append(c.records, handover.ReactionRecord{
			Scenario: c.catalog[c.scenario].Name,
			Seconds:  elapsed,
		})
		c.expired = false
		c.phase = PhaseResumed
		c.overlay = OverlayResume
		return false, nil

	case SignalDismiss:
		if c.phase != PhaseResumed {
			return false, c.invalid(sig)
		}
		c.cancelPendingTimer()
		c.phase = PhaseManual
		c.overlay = OverlayNone
		return false, nil

	case SignalResume:
		if c.phase != PhaseResumed && c.phase != PhaseManual {
			return false, c.invalid(sig)
		}
		c.cancelPendingTimer()
		if c.scenario < len(c.catalog)-1 {
			c.scenario++
			c.stage = 0
			c.phase = PhaseIdle
			c.overlay = OverlayAwaitingStart
		} else {
			c.phase = PhaseCompleted
			c.overlay = OverlayResults
		}
		return false, nil

	case SignalRetry:
		if c.phase != PhaseFailed {
			return false, c.invalid(sig)
		}
		c.cancelPendingTimer()
		c.stage = 0
		c.enterRunning()
		return true, nil

	case SignalClose:
		c.cancelPendingTimer()
		c.scenario = 0
		c.stage = 0
		c.failures = 0
		c.records = nil
		c.expired = false
		c.phase = PhaseClosed
		c.overlay = OverlayNone
		return false, nil
	}

	return false, fmt.Errorf("%w: %q", ErrUnknownSignal, sig)
}

func (c *Controller) invalid(sig Signal) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, sig, c.phase)
}

// enterRunning arms the countdown for the current stage. c.mu must be held
// and no timer may be armed.
func (c *Controller) enterRunning() {
	c.phase = PhaseRunning
	c.overlay = OverlayNone
	c.expired = false
	c.arm()
}

func (c *Controller) arm() {
	c.gen++
	gen := c.gen
	c.baseline = c.clock.Now()
	c.timer = c.clock.AfterFunc(c.currentStage().Duration(), func() { c.expire(gen) })
}

// cancelPendingTimer releases the armed countdown, if any. Every transition
// calls it before arming a new countdown or settling.
func (c *Controller) cancelPendingTimer() {
	if c.timer == nil {
		return
	}
	c.timer.Stop()
	c.timer = nil
	c.gen++
}

func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.timer == nil || c.phase != PhaseRunning {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	announce := false
	switch {
	case c.stage < len(c.catalog[c.scenario].Stages)-1:
		c.stage++
		c.arm()
		announce = true
	case c.rules.FailOnTimeout:
		c.failures++
		c.phase = PhaseFailed
		c.overlay = OverlayFailure
	default:
		c.expired = true
	}
	snap := c.commitLocked("timeout")
	c.mu.Unlock()

	if announce {
		c.announce(snap)
	}
}

// commitLocked records a completed transition and notifies the observer.
func (c *Controller) commitLocked(cause string) Snapshot {
	c.version++
	c.lastChange = c.clock.Now()
	snap := c.snapshotLocked()

	c.logger.Debug("session transition",
		"cause", cause,
		"group", c.group,
		"phase", snap.Phase,
		"scenario", snap.ScenarioIndex,
		"stage", snap.StageIndex,
		"failures", snap.Failures,
		"records", len(snap.Records),
	)

	if c.notify != nil {
		c.notify(snap)
	}
	return snap
}

func (c *Controller) currentStage() handover.Stage {
	return c.catalog[c.scenario].Stages[c.stage]
}

func (c *Controller) snapshotLocked() Snapshot {
	now := c.clock.Now()
	s := Snapshot{
		Version:       c.version,
		Group:         c.group,
		Phase:         c.phase,
		Overlay:       c.overlay,
		ScenarioIndex: c.scenario,
		ScenarioCount: len(c.catalog),
		StageIndex:    c.stage,
		Active:        c.timer != nil,
		Expired:       c.expired,
		Failures:      c.failures,
		Records:       slices.Clone(c.records),
		UpdatedAt:     c.lastChange,
	}
	if s.Records == nil {
		s.Records = []handover.ReactionRecord{}
	}

	if c.phase == PhaseClosed {
		return s
	}

	sc := c.catalog[c.scenario]
	st := c.currentStage()
	alert := handover.GenericAlert(st.Urgency)
	if c.rules.ContextMessages {
		alert = handover.AlertFor(st)
	}
	s.Scenario = &ScenarioView{ID: sc.ID, Name: sc.Name, Hazard: sc.Hazard}
	s.StageCount = len(sc.Stages)
	s.Stage = &st
	s.Alert = &alert

	if c.timer != nil {
		elapsed := now.Sub(c.baseline)
		s.Remaining = max(st.Duration()-elapsed, 0).Seconds()
	}
	if c.phase == PhaseRunning && c.rules.DisplayCountdown > 0 {
		elapsed := max(now.Sub(c.baseline), 0)
		left := max(int(c.rules.DisplayCountdown/time.Second)-int(elapsed/time.Second), 0)
		s.DisplayCountdown = &left
	}
	if c.phase == PhaseCompleted {
		sum := handover.Summarize(c.records)
		s.Summary = &sum
	}
	return s
}
