package domain

// FilterState bounds the visible frames by position in the frame sequence.
// Both ends are inclusive; they are indices, not span ids.
type FilterState struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Bounds clamps the filter to a sequence of n frames and returns the
// half-open window [lo, hi). An inverted filter yields an empty window.
func (f FilterState) Bounds(n int) (int, int) {
	lo, hi := f.Start, n
	if lo < 0 {
		lo = 0
	}
	if f.End < n {
		hi = f.End + 1
	}
	if hi < 0 {
		hi = 0
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// DetailSelection is an independent snapshot of one frame whose children
// are ordered by descending total duration.
type DetailSelection struct {
	Index int   `json:"index"`
	Frame Frame `json:"frame"`
}

// View is the derived state a command produces over the frame sequence.
// A nil Filter shows every frame.
type View struct {
	Filter *FilterState     `json:"filter"`
	Detail *DetailSelection `json:"detail"`
}

// Clone copies the view without aliasing the detail snapshot.
func (v View) Clone() View {
	out := View{}
	if v.Filter != nil {
		f := *v.Filter
		out.Filter = &f
	}
	if v.Detail != nil {
		d := DetailSelection{Index: v.Detail.Index, Frame: v.Detail.Frame.Clone()}
		out.Detail = &d
	}
	return out
}
