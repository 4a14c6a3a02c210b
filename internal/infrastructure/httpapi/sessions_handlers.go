package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Ragnaroek/terminus/internal/domain"
	"github.com/Ragnaroek/terminus/internal/usecase"
)

type commandRequest struct {
	Input string `json:"input"`
}

type commandResponse struct {
	Session    sessionDTO `json:"session"`
	Command    string     `json:"command"`
	Quit       bool       `json:"quit"`
	Recognized bool       `json:"recognized"`
	ClearInput bool       `json:"clearInput"`
}

// Session views embed records, so they go through the same DTOs (and
// message redaction) as /api/frames.
type frameDTO struct {
	Record   recordDTO   `json:"record"`
	Children []recordDTO `json:"children"`
}

type detailDTO struct {
	Index int      `json:"index"`
	Frame frameDTO `json:"frame"`
}

type viewDTO struct {
	Filter *domain.FilterState `json:"filter"`
	Detail *detailDTO          `json:"detail"`
}

type sessionDTO struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Commands  int       `json:"commands"`
	View      viewDTO   `json:"view"`
}

func toSessionDTO(s domain.Session) sessionDTO {
	out := sessionDTO{ID: s.ID, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt, Commands: s.Commands}
	out.View.Filter = s.View.Filter
	if d := s.View.Detail; d != nil {
		f := frameDTO{Record: toRecordDTO(d.Frame.Record), Children: make([]recordDTO, 0, len(d.Frame.Children))}
		for _, c := range d.Frame.Children {
			f.Children = append(f.Children, toRecordDTO(c))
		}
		out.View.Detail = &detailDTO{Index: d.Index, Frame: f}
	}
	return out
}

func toSessionDTOs(in []domain.Session) []sessionDTO {
	out := make([]sessionDTO, 0, len(in))
	for _, s := range in {
		out = append(out, toSessionDTO(s))
	}
	return out
}

var sessionUpgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// handleSessions serves /api/sessions: GET lists, POST creates.
func (d *Deps) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		items, total, err := d.Svc.ListSessions(r.Context(), usecase.SessionFilter{Limit: limit, Offset: offset})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": toSessionDTOs(items), "total": total})
	case http.MethodPost:
		sess, err := d.Svc.CreateSession(r.Context(), uuid.NewString())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
			return
		}
		d.refreshSessionGauge(r.Context())
		d.Monitor.Broadcast(MonitorEvent{Type: "session_started", ID: sess.ID})
		d.Logger.Debug().Str("session", sess.ID).Msg("session created")
		writeJSON(w, http.StatusCreated, toSessionDTO(sess))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleSessionByID dispatches /api/sessions/{id}[/commands|/ws].
func (d *Deps) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "session id required", nil)
		return
	}
	switch sub {
	case "":
		d.handleSession(w, r, id)
	case "commands":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		d.handleCommand(w, r, id)
	case "ws":
		d.handleSessionWS(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown session resource", nil)
	}
}

func (d *Deps) handleSession(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		sess, ok, err := d.Svc.Session(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "session not found", nil)
			return
		}
		writeJSON(w, http.StatusOK, toSessionDTO(sess))
	case http.MethodDelete:
		if err := d.Svc.DeleteSession(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
			return
		}
		d.Live.Close(id)
		d.refreshSessionGauge(r.Context())
		d.Monitor.Broadcast(MonitorEvent{Type: "session_ended", ID: id})
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (d *Deps) handleCommand(w http.ResponseWriter, r *http.Request, id string) {
	var in commandRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", "invalid json", nil)
		return
	}
	resp, err := d.exec(r.Context(), id, in.Input)
	if errors.Is(err, usecase.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "session not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSessionWS runs a command loop over a websocket: each text message is
// one command line, answered with a commandResponse. ":q" answers, then
// closes the socket.
func (d *Deps) handleSessionWS(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok, _ := d.Svc.Session(r.Context(), id); !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "session not found", nil)
		return
	}
	c, err := sessionUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	d.Live.Register(id, c)
	defer func() {
		d.Live.Unregister(id, c)
		_ = c.Close()
	}()
	// request context is not usable after hijack on all servers
	ctx := context.Background()
	for {
		mt, data, err := c.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		resp, err := d.exec(ctx, id, string(data))
		if err != nil {
			_ = d.Live.WriteJSON(id, apiErrorBody{Error: apiError{Code: "NOT_FOUND", Message: err.Error()}})
			d.Live.Close(id)
			return
		}
		if err := d.Live.WriteJSON(id, resp); err != nil {
			return
		}
		if resp.Quit {
			d.Live.Close(id)
			return
		}
	}
}

func (d *Deps) exec(ctx context.Context, id, input string) (commandResponse, error) {
	sess, out, err := d.Svc.Exec(ctx, id, input)
	if err != nil {
		return commandResponse{}, err
	}
	kind := out.Command.Kind.String()
	d.Metrics.CommandsTotal.WithLabelValues(kind).Inc()
	d.Monitor.Broadcast(MonitorEvent{Type: "command", ID: id, Ref: kind})
	d.Logger.Debug().Str("session", id).Str("cmd", kind).Bool("recognized", out.Recognized).Msg("command executed")
	if out.Quit {
		d.refreshSessionGauge(ctx)
		d.Monitor.Broadcast(MonitorEvent{Type: "session_ended", ID: id})
	}
	return commandResponse{
		Session:    toSessionDTO(sess),
		Command:    kind,
		Quit:       out.Quit,
		Recognized: out.Recognized,
		ClearInput: out.ClearInput,
	}, nil
}

func (d *Deps) refreshSessionGauge(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if _, total, err := d.Svc.ListSessions(ctx, usecase.SessionFilter{}); err == nil {
		d.Metrics.ActiveSessions.Set(float64(total))
	}
}
