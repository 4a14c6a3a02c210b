package tracejson

import (
	"errors"
	"testing"
	"time"

	"github.com/Ragnaroek/terminus/internal/domain"
)

func TestDecodeFrameRecord(t *testing.T) {
	rec, err := Decode(`{"timestamp":"2024-12-28T17:50:49.635111Z","level":"INFO","fields":{"message":"close","time.busy":"6.64ms","time.idle":"7.76ms"},"target":"iw::play","span":{"id":3,"name":"frame"},"spans":[]}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Target != "iw::play" || rec.Message != "close" || rec.SpanName != "frame" || rec.Level != "INFO" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.SpanID == nil || *rec.SpanID != 3 {
		t.Fatalf("span id = %v, want 3", rec.SpanID)
	}
	if rec.TimeBusy != 6_640_000 || rec.TimeIdle != 7_760_000 {
		t.Fatalf("busy=%d idle=%d", rec.TimeBusy, rec.TimeIdle)
	}
	if rec.TotalDuration() != 14_400_000 {
		t.Fatalf("total = %d", rec.TotalDuration())
	}
	if !rec.IsFrame() {
		t.Fatalf("expected frame record")
	}
	want := time.Date(2024, 12, 28, 17, 50, 49, 635111000, time.UTC)
	if rec.Timestamp == nil || !rec.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v", rec.Timestamp)
	}
}

func TestDecodeChildWithoutSpanID(t *testing.T) {
	rec, err := Decode(`{"fields":{"message":"close","time.busy":"2.93ms","time.idle":"375ns"},"target":"iw::time","span":{"name":"calc_tics"},"spans":[{"id":0,"name":"frame"}]}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.SpanID != nil {
		t.Fatalf("span id should be absent, got %d", *rec.SpanID)
	}
	if rec.IsFrame() {
		t.Fatalf("calc_tics is not a frame")
	}
	if rec.TimeIdle != 375 {
		t.Fatalf("idle = %d", rec.TimeIdle)
	}
	if rec.Timestamp != nil {
		t.Fatalf("timestamp should be absent, got %v", rec.Timestamp)
	}
}

func TestDecodeMalformed(t *testing.T) {
	lines := []string{
		``,
		`not json`,
		`{"fields":{"message":"m","time.busy":"1ms","time.idle":"1ms"},"span":{"name":"frame"}}`,
		`{"target":"t","span":{"name":"frame"}}`,
		`{"target":"t","fields":{"time.busy":"1ms","time.idle":"1ms"},"span":{"name":"frame"}}`,
		`{"target":"t","fields":{"message":"m","time.idle":"1ms"},"span":{"name":"frame"}}`,
		`{"target":"t","fields":{"message":"m","time.busy":"1ms","time.idle":"1ms"}}`,
		`{"target":"t","fields":{"message":"m","time.busy":"1ms","time.idle":"1ms"},"span":{"id":1}}`,
		`{"target":7,"fields":{"message":"m","time.busy":"1ms","time.idle":"1ms"},"span":{"name":"frame"}}`,
		`{"target":"t","fields":{"message":"m","time.busy":"1ms","time.idle":"1ms"},"span":{"id":-1,"name":"frame"}}`,
		`{"target":"t","fields":{"message":"m","time.busy":1,"time.idle":"1ms"},"span":{"name":"frame"}}`,
		`{"target":"t","fields":{"message":"m","time.busy":"1ms","time.idle":"1ms"},"span":{"name":"frame"}} {}`,
	}
	for _, l := range lines {
		_, err := Decode(l)
		var mr *domain.MalformedRecord
		if !errors.As(err, &mr) {
			t.Fatalf("Decode(%q) = %v, want MalformedRecord", l, err)
		}
		if mr.Line != l {
			t.Fatalf("line not carried: %q", mr.Line)
		}
	}
}

func TestDecodeWrapsDurationError(t *testing.T) {
	_, err := Decode(`{"target":"t","fields":{"message":"m","time.busy":"5xs","time.idle":"1ms"},"span":{"name":"frame"}}`)
	var mr *domain.MalformedRecord
	if !errors.As(err, &mr) {
		t.Fatalf("want MalformedRecord, got %v", err)
	}
	var de *domain.DecodeError
	if !errors.As(err, &de) || de.Token != "5xs" {
		t.Fatalf("want DecodeError for 5xs, got %v", err)
	}
}
