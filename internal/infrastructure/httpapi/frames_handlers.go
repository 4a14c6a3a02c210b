package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Ragnaroek/terminus/internal/adapters/decoders/duration"
	"github.com/Ragnaroek/terminus/internal/domain"
	"github.com/Ragnaroek/terminus/internal/usecase"
	"github.com/Ragnaroek/terminus/pkg/shared/redact"
)

type recordDTO struct {
	SpanID   *uint64 `json:"spanId,omitempty"`
	SpanName string  `json:"spanName"`
	Target   string  `json:"target"`
	Message  string  `json:"message"`
	Level    string  `json:"level,omitempty"`
	BusyNs   int64   `json:"busyNs"`
	IdleNs   int64   `json:"idleNs"`
	TotalNs  int64   `json:"totalNs"`
	Total    string  `json:"total"`
}

type frameSummary struct {
	Index int `json:"index"`
	recordDTO
	Children int `json:"children"`
}

type frameDetail struct {
	frameSummary
	Records []recordDTO `json:"records"`
}

func toRecordDTO(r domain.Record) recordDTO {
	return recordDTO{
		SpanID:   r.SpanID,
		SpanName: r.SpanName,
		Target:   r.Target,
		Message:  redact.Message(r.Message),
		Level:    r.Level,
		BusyNs:   int64(r.TimeBusy),
		IdleNs:   int64(r.TimeIdle),
		TotalNs:  int64(r.TotalDuration()),
		Total:    duration.Format(r.TotalDuration()),
	}
}

func toFrameDetail(index int, f domain.Frame) frameDetail {
	out := frameDetail{
		frameSummary: frameSummary{Index: index, recordDTO: toRecordDTO(f.Record), Children: len(f.Children)},
		Records:      make([]recordDTO, 0, len(f.Children)),
	}
	for _, c := range f.Children {
		out.Records = append(out.Records, toRecordDTO(c))
	}
	return out
}

// handleListFrames serves GET /api/frames?from=&to= where from/to follow the
// same inclusive index window as the ":f from..to" command.
func (d *Deps) handleListFrames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	frames := d.Svc.Frames()
	q := r.URL.Query()
	var filter *domain.FilterState
	if q.Has("from") || q.Has("to") {
		from, err1 := strconv.Atoi(q.Get("from"))
		to, err2 := strconv.Atoi(q.Get("to"))
		if err1 != nil || err2 != nil || from < 0 || to < 0 {
			writeError(w, http.StatusBadRequest, "BAD_RANGE", "from and to must be non-negative integers", nil)
			return
		}
		filter = &domain.FilterState{Start: from, End: to}
	}
	start, window := usecase.Visible(frames, filter)
	items := make([]frameSummary, 0, len(window))
	for i, f := range window {
		items = append(items, frameSummary{Index: start + i, recordDTO: toRecordDTO(f.Record), Children: len(f.Children)})
	}
	max := usecase.MaxTotal(frames)
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(frames),
		"maxNs": int64(max),
		"maxMs": float64(max) / 1e6,
	})
}

func (d *Deps) handleFrameByIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/frames/"), "/")
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		writeError(w, http.StatusBadRequest, "BAD_INDEX", "frame index must be a non-negative integer", nil)
		return
	}
	f, ok := d.Svc.Frame(idx)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "frame not found", map[string]any{"index": idx, "total": len(d.Svc.Frames())})
		return
	}
	writeJSON(w, http.StatusOK, toFrameDetail(idx, f))
}
