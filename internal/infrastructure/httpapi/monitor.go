package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// MonitorEvent announces session lifecycle and command activity.
// Type is one of session_started, session_ended, command; Ref carries the
// command kind.
type MonitorEvent struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Ref  string `json:"ref,omitempty"`
}

// MonitorHub fans MonitorEvents out to websocket clients and in-process
// subscribers.
type MonitorHub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	wmu      sync.Mutex

	lmu       sync.RWMutex
	listeners map[chan MonitorEvent]struct{}
}

func NewMonitorHub() *MonitorHub {
	return &MonitorHub{
		clients:   make(map[*websocket.Conn]struct{}),
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		listeners: make(map[chan MonitorEvent]struct{}),
	}
}

func (h *MonitorHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	// read until the client goes away; monitor clients never send
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.Close()
}

// Clients reports the number of connected websocket clients.
func (h *MonitorHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *MonitorHub) Broadcast(ev MonitorEvent) {
	data, _ := json.Marshal(ev)
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	h.lmu.RLock()
	subs := make([]chan MonitorEvent, 0, len(h.listeners))
	for ch := range h.listeners {
		subs = append(subs, ch)
	}
	h.lmu.RUnlock()

	h.wmu.Lock()
	for _, c := range clients {
		_ = c.SetWriteDeadline(time.Now().Add(2 * time.Second))
		_ = c.WriteMessage(websocket.TextMessage, data)
	}
	h.wmu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- ev:
		default: // slow subscriber, drop
		}
	}
}

// Subscribe returns a channel receiving monitor events. Caller must Unsubscribe.
func (h *MonitorHub) Subscribe() chan MonitorEvent {
	ch := make(chan MonitorEvent, 256)
	h.lmu.Lock()
	h.listeners[ch] = struct{}{}
	h.lmu.Unlock()
	return ch
}

func (h *MonitorHub) Unsubscribe(ch chan MonitorEvent) {
	h.lmu.Lock()
	if _, ok := h.listeners[ch]; ok {
		delete(h.listeners, ch)
		close(ch)
	}
	h.lmu.Unlock()
}

// LogEvents subscribes before returning and logs every event until ctx is
// done, flushing what is already queued. The returned channel closes once
// the subscription is released.
func (h *MonitorHub) LogEvents(ctx context.Context, logger *zerolog.Logger) <-chan struct{} {
	ch := h.Subscribe()
	done := make(chan struct{})
	logEvent := func(ev MonitorEvent) {
		lvl := zerolog.InfoLevel
		if ev.Type == "command" {
			lvl = zerolog.DebugLevel
		}
		logger.WithLevel(lvl).Str("event", ev.Type).Str("session", ev.ID).Str("ref", ev.Ref).Int("monitor_clients", h.Clients()).Msg("monitor")
	}
	go func() {
		defer close(done)
		defer h.Unsubscribe(ch)
		for {
			select {
			case ev := <-ch:
				logEvent(ev)
			case <-ctx.Done():
				for {
					select {
					case ev := <-ch:
						logEvent(ev)
					default:
						return
					}
				}
			}
		}
	}()
	return done
}
