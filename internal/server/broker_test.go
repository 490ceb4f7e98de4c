package server

import (
	"testing"

	"github.com/playperu/handover/internal/session"
)

func TestBrokerPublish(t *testing.T) {
	b := NewBroker()
	a1 := b.Subscribe("a")
	a2 := b.Subscribe("a")
	other := b.Subscribe("b")

	snap := session.Snapshot{Version: 3}
	b.Publish("a", Event{Type: EventSnapshot, Snapshot: &snap})

	for _, ch := range []chan Event{a1, a2} {
		ev := <-ch
		if ev.Type != EventSnapshot || ev.Snapshot.Version != 3 {
			t.Errorf("got %+v", ev)
		}
	}
	select {
	case ev := <-other:
		t.Errorf("unrelated subscriber got %+v", ev)
	default:
	}
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("a")

	for i := range 100 {
		b.Publish("a", Event{Type: EventSnapshot, Snapshot: &session.Snapshot{Version: uint64(i)}})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered %d, want full buffer of %d", len(ch), cap(ch))
	}
	if ev := <-ch; ev.Snapshot.Version != 0 {
		t.Errorf("first buffered version = %d, want 0", ev.Snapshot.Version)
	}
}

func TestBrokerUnsubscribeAndDrop(t *testing.T) {
	b := NewBroker()
	ch1 := b.Subscribe("a")
	ch2 := b.Subscribe("a")

	b.Unsubscribe("a", ch1)
	if n := b.Subscribers("a"); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}

	b.Drop("a")
	if _, ok := <-ch2; ok {
		t.Error("dropped channel should be closed")
	}
	if n := b.Subscribers("a"); n != 0 {
		t.Errorf("subscribers after drop = %d", n)
	}

	// Unsubscribing after a drop is harmless.
	b.Unsubscribe("a", ch2)
	b.Publish("a", Event{Type: EventSpeech})
}
