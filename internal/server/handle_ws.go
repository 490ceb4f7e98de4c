package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/handover/internal/session"
)

// SignalMessage is a client command on the session WebSocket.
type SignalMessage struct {
	Signal string `json:"signal"`
}

// wsTick is how often a running session pushes a fresh countdown.
var wsTick = time.Second

// handleWS pushes session events and accepts signals. All writes happen on
// the handler goroutine; a reader goroutine feeds replies back to it.
func handleWS(logger *slog.Logger, broker *Broker, arch *Archiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		live := liveSession(r)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Hour)
		defer cancel()

		ch := broker.Subscribe(live.ID)
		defer broker.Unsubscribe(live.ID, ch)

		replies := make(chan Event, 4)
		go func() {
			defer cancel()
			for {
				var msg SignalMessage
				if err := wsjson.Read(ctx, conn, &msg); err != nil {
					logger.Debug("websocket read ended", "session", live.ID, "error", err)
					return
				}

				sig, err := session.ParseSignal(msg.Signal)
				if err == nil && sig == session.SignalClose {
					err = session.ErrUnknownSignal
				}
				if err == nil {
					_, err = dispatch(ctx, live, sig, arch)
				}
				if err != nil {
					select {
					case replies <- Event{Type: EventError, Error: err.Error()}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()

		snap := live.Snapshot()
		if err := wsjson.Write(ctx, conn, Event{Type: EventSnapshot, Snapshot: &snap}); err != nil {
			return
		}

		tick := time.NewTicker(wsTick)
		defer tick.Stop()

		for {
			var ev Event
			select {
			case <-ctx.Done():
				return
			case e, ok := <-ch:
				if !ok {
					conn.Close(websocket.StatusNormalClosure, "session closed")
					return
				}
				ev = e
			case ev = <-replies:
			case <-tick.C:
				snap := live.Snapshot()
				if !snap.Active {
					continue
				}
				ev = Event{Type: EventSnapshot, Snapshot: &snap}
			}

			if err := wsjson.Write(ctx, conn, ev); err != nil {
				logger.Debug("websocket write failed", "session", live.ID, "error", err)
				return
			}
			if ev.Snapshot != nil && ev.Snapshot.Phase == session.PhaseClosed {
				conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
		}
	}
}
