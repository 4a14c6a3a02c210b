package domain

import "time"

// Frame is a frame-span record plus every record that arrived before the
// next frame-span record, in arrival order.
type Frame struct {
	Record   Record   `json:"record"`
	Children []Record `json:"children"`
}

func (f Frame) TotalDuration() time.Duration { return f.Record.TotalDuration() }

// Clone deep-copies the frame so the copy can be reordered freely.
func (f Frame) Clone() Frame {
	out := Frame{Record: f.Record.Clone(), Children: make([]Record, len(f.Children))}
	for i, c := range f.Children {
		out.Children[i] = c.Clone()
	}
	return out
}
