// Package file reads trace files line by line into domain records.
package file

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/Ragnaroek/terminus/internal/adapters/decoders/tracejson"
	"github.com/Ragnaroek/terminus/internal/domain"
)

// DefaultMaxLineBytes bounds a single trace line.
const DefaultMaxLineBytes = 1 << 20

// Options controls how a trace stream is read.
type Options struct {
	MaxLineBytes int
	// SkipMalformed drops undecodable lines instead of aborting the load.
	SkipMalformed bool
	// OnMalformed is called for every dropped line when SkipMalformed is set.
	OnMalformed func(*domain.MalformedRecord)
}

// ReadFile opens path and decodes every line. Open and read failures are
// returned as *domain.LoadError.
func ReadFile(ctx context.Context, path string, opts Options) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Cause: err}
	}
	defer f.Close()
	recs, err := ReadRecords(ctx, f, opts)
	if err != nil {
		var mr *domain.MalformedRecord
		if errors.As(err, &mr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &domain.LoadError{Path: path, Cause: err}
	}
	return recs, nil
}

// ReadRecords decodes r line by line. Blank lines are ignored. The first
// malformed line aborts with a *domain.MalformedRecord carrying its 1-based
// line number, unless opts.SkipMalformed is set.
func ReadRecords(ctx context.Context, r io.Reader, opts Options) ([]domain.Record, error) {
	maxLine := opts.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	initial := 64 * 1024
	if initial > maxLine {
		initial = maxLine
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, initial), maxLine)

	var out []domain.Record
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		rec, err := tracejson.Decode(text)
		if err != nil {
			var mr *domain.MalformedRecord
			if !errors.As(err, &mr) {
				return nil, err
			}
			mr.LineNo = lineNo
			if opts.SkipMalformed {
				if opts.OnMalformed != nil {
					opts.OnMalformed(mr)
				}
				continue
			}
			return nil, mr
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Source reads trace files with fixed options.
type Source struct {
	Opts Options
}

func (s Source) ReadRecords(ctx context.Context, path string) ([]domain.Record, error) {
	return ReadFile(ctx, path, s.Opts)
}
