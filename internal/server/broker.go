package server

import (
	"sync"

	"github.com/playperu/handover/internal/session"
)

const (
	EventSnapshot = "snapshot"
	EventSpeech   = "speech"
	EventError    = "error"
)

// Event is pushed to session subscribers over SSE and WebSocket.
type Event struct {
	Type      string             `json:"type"`
	Snapshot  *session.Snapshot  `json:"snapshot,omitempty"`
	Utterance *session.Utterance `json:"utterance,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Broker is an in-process pub/sub for session events, keyed by session ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives events for the given session.
// The channel is closed when the session is dropped.
func (b *Broker) Subscribe(sessionID string) chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan Event]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the session's subscribers.
func (b *Broker) Unsubscribe(sessionID string, ch chan Event) {
	b.mu.Lock()
	delete(b.subs[sessionID], ch)
	if len(b.subs[sessionID]) == 0 {
		delete(b.subs, sessionID)
	}
	b.mu.Unlock()
}

// Publish never blocks; a subscriber with a full buffer misses the event.
func (b *Broker) Publish(sessionID string, ev Event) {
	b.mu.RLock()
	for ch := range b.subs[sessionID] {
		select {
		case ch <- ev:
		default:
		}
	}
	b.mu.RUnlock()
}

// Drop closes and forgets every subscriber of the session.
func (b *Broker) Drop(sessionID string) {
	b.mu.Lock()
	for ch := range b.subs[sessionID] {
		close(ch)
	}
	delete(b.subs, sessionID)
	b.mu.Unlock()
}

// Subscribers reports how many channels listen on the session.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}
