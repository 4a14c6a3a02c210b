package usecase

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Ragnaroek/terminus/internal/domain"
)

type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandQuit
	CommandFilterAll
	CommandInspectMax
	CommandFilterRange
)

func (k CommandKind) String() string {
	switch k {
	case CommandQuit:
		return "quit"
	case CommandFilterAll:
		return "filter_all"
	case CommandInspectMax:
		return "inspect_max"
	case CommandFilterRange:
		return "filter_range"
	default:
		return "none"
	}
}

// Command is a parsed command line. Lower and Upper are only set for
// CommandFilterRange.
type Command struct {
	Kind  CommandKind
	Lower int
	Upper int
}

// Outcome is the result of executing one command line.
type Outcome struct {
	Command Command
	View    domain.View
	Quit    bool
	// Recognized is false when the input matched no command.
	Recognized bool
	// ClearInput tells the text-entry collaborator to empty its buffer.
	// Every input clears, recognized or not.
	ClearInput bool
}

// ParseCommand reads a whitespace-delimited command line:
//
//	:q                  quit
//	:f all              show all frames
//	:f inspect max      inspect the frame with the largest total duration
//	:f <lower>..<upper> show frames lower through upper
//
// Anything else, including malformed range bounds, parses as CommandNone.
func ParseCommand(line string) Command {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Command{}
	}
	switch tokens[0] {
	case ":q":
		if len(tokens) == 1 {
			return Command{Kind: CommandQuit}
		}
	case ":f":
		return parseFilter(tokens[1:])
	}
	return Command{}
}

func parseFilter(args []string) Command {
	switch {
	case len(args) == 1 && args[0] == "all":
		return Command{Kind: CommandFilterAll}
	case len(args) == 2 && args[0] == "inspect" && args[1] == "max":
		return Command{Kind: CommandInspectMax}
	case len(args) == 1:
		lo, hi, ok := strings.Cut(args[0], "..")
		if !ok {
			return Command{}
		}
		lower, err := parseIndex(lo)
		if err != nil {
			return Command{}
		}
		upper, err := parseIndex(hi)
		if err != nil {
			return Command{}
		}
		return Command{Kind: CommandFilterRange, Lower: lower, Upper: upper}
	}
	return Command{}
}

func parseIndex(s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return 0, err
	}
	if n > uint64(maxInt) {
		return 0, strconv.ErrRange
	}
	return int(n), nil
}

const maxInt = int(^uint(0) >> 1)

// Execute applies cmd to the current view. frames is never modified; the
// returned view shares nothing with view or frames.
func Execute(frames []domain.Frame, view domain.View, cmd Command) Outcome {
	out := Outcome{Command: cmd, View: view.Clone(), Recognized: cmd.Kind != CommandNone, ClearInput: true}
	switch cmd.Kind {
	case CommandQuit:
		out.Quit = true
	case CommandFilterAll:
		out.View = domain.View{}
	case CommandFilterRange:
		out.View.Filter = &domain.FilterState{Start: cmd.Lower, End: cmd.Upper}
	case CommandInspectMax:
		if d, ok := InspectMax(frames); ok {
			out.View.Detail = &d
		}
	}
	return out
}

// Interpret parses and executes one command line.
func Interpret(frames []domain.Frame, view domain.View, line string) Outcome {
	return Execute(frames, view, ParseCommand(line))
}

// InspectMax selects the first frame with the largest total duration and
// returns a snapshot with its children stably sorted by descending total.
func InspectMax(frames []domain.Frame) (domain.DetailSelection, bool) {
	if len(frames) == 0 {
		return domain.DetailSelection{}, false
	}
	best := 0
	for i := 1; i < len(frames); i++ {
		if frames[i].TotalDuration() > frames[best].TotalDuration() {
			best = i
		}
	}
	snap := frames[best].Clone()
	sort.SliceStable(snap.Children, func(i, j int) bool {
		return snap.Children[i].TotalDuration() > snap.Children[j].TotalDuration()
	})
	return domain.DetailSelection{Index: best, Frame: snap}, true
}
