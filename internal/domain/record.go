package domain

import "time"

// FrameSpanName is the span name that opens a new frame.
const FrameSpanName = "frame"

// Record is one decoded trace line.
type Record struct {
	Target    string        `json:"target"`
	Message   string        `json:"message"`
	TimeBusy  time.Duration `json:"busyNs"`
	TimeIdle  time.Duration `json:"idleNs"`
	SpanID    *uint64       `json:"spanId,omitempty"`
	SpanName  string        `json:"spanName"`
	Level     string        `json:"level,omitempty"`
	Timestamp *time.Time    `json:"timestamp,omitempty"`
}

// TotalDuration is busy plus idle time.
func (r Record) TotalDuration() time.Duration { return r.TimeBusy + r.TimeIdle }

// IsFrame reports whether the record starts a frame.
func (r Record) IsFrame() bool { return r.SpanName == FrameSpanName }

// Clone returns a copy that shares no pointers with r.
func (r Record) Clone() Record {
	if r.SpanID != nil {
		id := *r.SpanID
		r.SpanID = &id
	}
	if r.Timestamp != nil {
		ts := *r.Timestamp
		r.Timestamp = &ts
	}
	return r
}
