package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/handover/internal/handover"
	"github.com/playperu/handover/internal/session"
)

// Live is a running participant session.
type Live struct {
	*session.Controller

	ID          string
	Participant string
	CreatedAt   time.Time
}

type RegistryOption func(*Registry)

// WithSessionClock drives every new controller from c.
func WithSessionClock(c session.Clock) RegistryOption {
	return func(r *Registry) { r.clock = c }
}

// WithShuffle replaces the random source used to order group A catalogs.
func WithShuffle(intn func(n int) int) RegistryOption {
	return func(r *Registry) { r.intn = intn }
}

// Registry holds live sessions in memory. They are never persisted: a
// restarted process starts empty.
type Registry struct {
	logger *slog.Logger
	broker *Broker
	clock  session.Clock
	intn   func(n int) int
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]*Live
}

func NewRegistry(logger *slog.Logger, broker *Broker, ttl time.Duration, opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:   logger,
		broker:   broker,
		clock:    session.SystemClock{},
		ttl:      ttl,
		sessions: make(map[string]*Live),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) Broker() *Broker { return r.broker }

// Create starts a session for group with a freshly ordered catalog.
func (r *Registry) Create(group handover.Group, participant string) (*Live, error) {
	catalog, err := handover.NewCatalog(group, r.intn)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}

	id := uuid.NewString()
	logger := r.logger.With("session", id)
	ctl, err := session.New(group, catalog,
		session.WithClock(r.clock),
		session.WithLogger(logger),
		session.WithNotifier(func(s session.Snapshot) {
			r.broker.Publish(id, Event{Type: EventSnapshot, Snapshot: &s})
		}),
		session.WithAnnouncer(session.AnnouncerFunc(func(u session.Utterance) {
			r.broker.Publish(id, Event{Type: EventSpeech, Utterance: &u})
		})),
	)
	if err != nil {
		return nil, fmt.Errorf("creating controller: %w", err)
	}

	live := &Live{Controller: ctl, ID: id, Participant: participant, CreatedAt: r.clock.Now()}

	r.mu.Lock()
	r.sessions[id] = live
	r.mu.Unlock()

	logger.Info("session created", "group", group, "participant", participant)
	return live, nil
}

func (r *Registry) Get(id string) (*Live, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	live, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	return live, nil
}

// Remove closes the session, cancelling its countdown, and forgets it.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	live, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrNotFound)
	}

	r.close(live)
	return nil
}

func (r *Registry) close(live *Live) {
	// A session closed by an earlier signal reports ErrClosed; either way it
	// ends up closed, so the result is ignored.
	live.Close()
	r.broker.Drop(live.ID)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions with no transition for longer than the TTL and
// reports how many it removed.
func (r *Registry) Sweep() int {
	cutoff := r.clock.Now().Add(-r.ttl)

	var stale []*Live
	r.mu.Lock()
	for id, live := range r.sessions {
		if live.LastChange().Before(cutoff) {
			stale = append(stale, live)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, live := range stale {
		r.close(live)
		r.logger.Info("session expired", "session", live.ID)
	}
	return len(stale)
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("janitor sweep", "removed", n, "remaining", r.Len())
			}
		}
	}
}

// CloseAll closes every live session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Live, 0, len(r.sessions))
	for id, live := range r.sessions {
		all = append(all, live)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, live := range all {
		r.close(live)
	}
}
