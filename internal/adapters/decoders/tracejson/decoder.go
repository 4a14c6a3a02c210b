// Package tracejson decodes tracing-subscriber JSON lines such as
//
//	{"timestamp":"2024-12-28T17:50:49.635111Z","level":"INFO",
//	 "fields":{"message":"close","time.busy":"6.64ms","time.idle":"7.76ms"},
//	 "target":"iw::play","span":{"id":3,"name":"frame"},"spans":[]}
//
// into domain records.
package tracejson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ragnaroek/terminus/internal/adapters/decoders/duration"
	"github.com/Ragnaroek/terminus/internal/domain"
)

type line struct {
	Timestamp *time.Time `json:"timestamp"`
	Level     string     `json:"level"`
	Target    *string    `json:"target"`
	Fields    *fields    `json:"fields"`
	Span      *span      `json:"span"`
}

type fields struct {
	Message  *string `json:"message"`
	TimeBusy *string `json:"time.busy"`
	TimeIdle *string `json:"time.idle"`
}

type span struct {
	ID   *uint64 `json:"id"`
	Name *string `json:"name"`
}

// Decode parses one trace line. Every failure is a *domain.MalformedRecord;
// duration failures additionally unwrap to *domain.DecodeError.
func Decode(raw string) (domain.Record, error) {
	var l line
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&l); err != nil {
		return domain.Record{}, malformed(raw, err)
	}
	if dec.More() {
		return domain.Record{}, malformed(raw, errors.New("trailing data after object"))
	}
	switch {
	case l.Target == nil:
		return domain.Record{}, malformed(raw, missing("target"))
	case l.Fields == nil:
		return domain.Record{}, malformed(raw, missing("fields"))
	case l.Fields.Message == nil:
		return domain.Record{}, malformed(raw, missing("fields.message"))
	case l.Fields.TimeBusy == nil:
		return domain.Record{}, malformed(raw, missing("fields.time.busy"))
	case l.Fields.TimeIdle == nil:
		return domain.Record{}, malformed(raw, missing("fields.time.idle"))
	case l.Span == nil:
		return domain.Record{}, malformed(raw, missing("span"))
	case l.Span.Name == nil:
		return domain.Record{}, malformed(raw, missing("span.name"))
	}

	busy, err := duration.Parse(*l.Fields.TimeBusy)
	if err != nil {
		return domain.Record{}, malformed(raw, fmt.Errorf("time.busy: %w", err))
	}
	idle, err := duration.Parse(*l.Fields.TimeIdle)
	if err != nil {
		return domain.Record{}, malformed(raw, fmt.Errorf("time.idle: %w", err))
	}

	rec := domain.Record{
		Target:    *l.Target,
		Message:   *l.Fields.Message,
		TimeBusy:  busy,
		TimeIdle:  idle,
		SpanID:    l.Span.ID,
		SpanName:  *l.Span.Name,
		Level:     l.Level,
		Timestamp: l.Timestamp,
	}
	return rec, nil
}

func missing(field string) error { return fmt.Errorf("missing field %q", field) }

func malformed(raw string, cause error) error {
	return &domain.MalformedRecord{Line: raw, Cause: cause}
}
