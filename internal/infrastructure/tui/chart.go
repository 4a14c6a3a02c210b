package tui

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Ragnaroek/terminus/internal/domain"
)

// columns reduces frames to at most width bars, keeping the largest total in
// each bucket so spikes stay visible.
func columns(frames []domain.Frame, width int) []time.Duration {
	if width <= 0 || len(frames) == 0 {
		return nil
	}
	if len(frames) <= width {
		out := make([]time.Duration, len(frames))
		for i, f := range frames {
			out[i] = f.TotalDuration()
		}
		return out
	}
	out := make([]time.Duration, width)
	for i, f := range frames {
		b := i * width / len(frames)
		if d := f.TotalDuration(); d > out[b] {
			out[b] = d
		}
	}
	return out
}

// barHeight maps d onto [0,height] on a log10 millisecond scale bounded by
// max. Traces whose max stays under 1ms have no positive log range and fall
// back to a linear scale.
func barHeight(d, max time.Duration, height int) int {
	if d <= 0 || max <= 0 || height <= 0 {
		return 0
	}
	ms, maxMs := float64(d)/1e6, float64(max)/1e6
	var ratio float64
	if maxMs > 1 {
		ratio = math.Log10(math.Max(ms, 1)) / math.Log10(maxMs)
	} else {
		ratio = ms / maxMs
	}
	h := int(math.Round(ratio * float64(height)))
	if h == 0 {
		h = 1 // any recorded time gets at least a sliver
	}
	if h > height {
		h = height
	}
	return h
}

// renderChart draws one bar per column with a y axis labelled in
// milliseconds (log scale) and an x axis labelled with frame indices.
func renderChart(frames []domain.Frame, first int, max time.Duration, width, height int) []string {
	maxLabel := strconv.FormatFloat(math.Ceil(float64(max)/1e6), 'f', -1, 64)
	gutter := len(maxLabel)
	if gutter < 1 {
		gutter = 1
	}
	plotWidth := width - gutter - 1
	cols := columns(frames, plotWidth)

	lines := make([]string, 0, height+2)
	for row := height; row >= 1; row-- {
		label := strings.Repeat(" ", gutter)
		if row == height {
			label = pad(maxLabel, gutter)
		}
		var b strings.Builder
		b.WriteString(label)
		b.WriteString("│")
		for _, c := range cols {
			if barHeight(c, max, height) >= row {
				b.WriteString("█")
			} else {
				b.WriteString(" ")
			}
		}
		lines = append(lines, b.String())
	}
	lines = append(lines, pad("0", gutter)+"└"+strings.Repeat("─", len(cols)))

	axis := strings.Repeat(" ", gutter+1)
	if len(frames) > 0 {
		lo, hi := strconv.Itoa(first), strconv.Itoa(first+len(frames)-1)
		gap := len(cols) - len(lo) - len(hi)
		if gap < 1 {
			gap = 1
		}
		axis += lo + strings.Repeat(" ", gap) + hi
	}
	lines = append(lines, axis)
	return lines
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat(" ", n-len(s)) + s
}
