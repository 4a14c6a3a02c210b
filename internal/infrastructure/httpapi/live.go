package httpapi

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// LiveSessions tracks the websocket attached to each inspection session so
// that deleting a session over REST also closes its socket.
type LiveSessions struct {
	mu sync.RWMutex
	m  map[string]*liveWS
}

type liveWS struct {
	conn *websocket.Conn
	// gorilla/websocket allows a single concurrent writer
	writeMu sync.Mutex
}

func NewLiveSessions() *LiveSessions {
	return &LiveSessions{m: make(map[string]*liveWS)}
}

// Register attaches conn to the session, replacing any previous socket.
func (ls *LiveSessions) Register(sessionID string, conn *websocket.Conn) {
	if sessionID == "" {
		return
	}
	ls.mu.Lock()
	ls.m[sessionID] = &liveWS{conn: conn}
	ls.mu.Unlock()
}

// Unregister detaches conn if it is still the session's socket.
func (ls *LiveSessions) Unregister(sessionID string, conn *websocket.Conn) {
	ls.mu.Lock()
	if w, ok := ls.m[sessionID]; ok && w.conn == conn {
		delete(ls.m, sessionID)
	}
	ls.mu.Unlock()
}

func (ls *LiveSessions) WriteJSON(sessionID string, v any) error {
	ls.mu.RLock()
	w := ls.m[sessionID]
	ls.mu.RUnlock()
	if w == nil {
		return errors.New("session not found or closed")
	}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return w.conn.WriteJSON(v)
}

// Close sends a normal close frame to the session's socket, if any.
func (ls *LiveSessions) Close(sessionID string) {
	ls.mu.RLock()
	w := ls.m[sessionID]
	ls.mu.RUnlock()
	if w == nil {
		return
	}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed")
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
