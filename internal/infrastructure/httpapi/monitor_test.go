package httpapi

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func TestMonitorWebsocketReceivesSessionEvents(t *testing.T) {
	srv, d := startServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/monitor/ws"
	c, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	deadline := time.Now().Add(2 * time.Second)
	for d.Monitor.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("monitor client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sess := createSession(t, srv.URL)
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev MonitorEvent
	if err := c.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != "session_started" || ev.ID != sess.ID {
		t.Fatalf("unexpected event: %+v", ev)
	}

	postCommand(t, srv.URL, sess.ID, ":f all")
	if err := c.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != "command" || ev.Ref != "filter_all" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestMonitorLogEvents(t *testing.T) {
	hub := NewMonitorHub()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx, cancel := context.WithCancel(context.Background())
	done := hub.LogEvents(ctx, &logger)

	hub.Broadcast(MonitorEvent{Type: "session_started", ID: "s1"})
	cancel()
	<-done

	out := buf.String()
	if !strings.Contains(out, `"event":"session_started"`) || !strings.Contains(out, `"session":"s1"`) {
		t.Fatalf("log output = %q", out)
	}
	hub.lmu.RLock()
	n := len(hub.listeners)
	hub.lmu.RUnlock()
	if n != 0 {
		t.Fatalf("listener not released, %d left", n)
	}
}
