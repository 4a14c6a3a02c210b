package usecase

import (
	"time"

	"github.com/Ragnaroek/terminus/internal/domain"
)

// Aggregate groups records into frames in a single pass. A frame owns every
// record that follows it up to the next frame record. Records seen before
// the first frame record belong to no frame and are dropped.
func Aggregate(records []domain.Record) []domain.Frame {
	var (
		frames  []domain.Frame
		current *domain.Frame
		pending []domain.Record
	)
	for _, r := range records {
		if !r.IsFrame() {
			pending = append(pending, r)
			continue
		}
		if current != nil {
			current.Children = pending
			frames = append(frames, *current)
		}
		current = &domain.Frame{Record: r}
		pending = nil
	}
	if current != nil {
		current.Children = pending
		frames = append(frames, *current)
	}
	return frames
}

// Flatten is the inverse walk of Aggregate: each frame record followed by
// its children, frame by frame.
func Flatten(frames []domain.Frame) []domain.Record {
	n := 0
	for _, f := range frames {
		n += 1 + len(f.Children)
	}
	out := make([]domain.Record, 0, n)
	for _, f := range frames {
		out = append(out, f.Record)
		out = append(out, f.Children...)
	}
	return out
}

// Visible applies a filter to frames and returns the index of the first
// visible frame together with the visible window. A nil filter shows all.
func Visible(frames []domain.Frame, filter *domain.FilterState) (int, []domain.Frame) {
	if filter == nil {
		return 0, frames
	}
	lo, hi := filter.Bounds(len(frames))
	return lo, frames[lo:hi]
}

// MaxTotal returns the largest frame total duration, zero when empty.
func MaxTotal(frames []domain.Frame) time.Duration {
	var max time.Duration
	for _, f := range frames {
		if d := f.TotalDuration(); d > max {
			max = d
		}
	}
	return max
}
