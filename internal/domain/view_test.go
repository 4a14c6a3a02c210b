package domain

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestFilterBounds(t *testing.T) {
	cases := []struct {
		f      FilterState
		n      int
		lo, hi int
	}{
		{FilterState{0, 3}, 10, 0, 4},
		{FilterState{2, 5}, 4, 2, 4},
		{FilterState{5, 2}, 10, 5, 5},
		{FilterState{20, 30}, 10, 10, 10},
		{FilterState{0, 0}, 0, 0, 0},
		{FilterState{0, math.MaxInt}, 10, 0, 10},
		{FilterState{math.MaxInt, math.MaxInt}, 10, 10, 10},
	}
	for _, c := range cases {
		lo, hi := c.f.Bounds(c.n)
		if lo != c.lo || hi != c.hi {
			t.Fatalf("%+v.Bounds(%d) = [%d,%d), want [%d,%d)", c.f, c.n, lo, hi, c.lo, c.hi)
		}
	}
}

func TestViewCloneIsDeep(t *testing.T) {
	id := uint64(4)
	v := View{
		Filter: &FilterState{Start: 1, End: 2},
		Detail: &DetailSelection{Index: 0, Frame: Frame{Record: Record{SpanID: &id, SpanName: FrameSpanName}, Children: []Record{{Message: "a"}}}},
	}
	c := v.Clone()
	c.Filter.End = 9
	c.Detail.Frame.Children[0].Message = "b"
	*c.Detail.Frame.Record.SpanID = 5
	if v.Filter.End != 2 || v.Detail.Frame.Children[0].Message != "a" || id != 4 {
		t.Fatalf("clone aliases the original view")
	}
	if (View{}).Clone().Filter != nil {
		t.Fatalf("empty view clone should stay empty")
	}
}

func TestRecordTimestampJSON(t *testing.T) {
	b, err := json.Marshal(Record{SpanName: FrameSpanName})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "timestamp") {
		t.Fatalf("missing timestamp should be omitted: %s", b)
	}
	ts := time.Date(2024, 12, 28, 17, 50, 49, 0, time.UTC)
	r := Record{Timestamp: &ts}
	c := r.Clone()
	*c.Timestamp = ts.Add(time.Hour)
	if !r.Timestamp.Equal(ts) {
		t.Fatalf("clone aliases the timestamp")
	}
}
