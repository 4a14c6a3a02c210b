// terminus browses tracing-subscriber JSON traces frame by frame.
//
// Usage:
//
//	terminus [flags] <trace-file>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ragnaroek/terminus/internal/adapters/source/file"
	"github.com/Ragnaroek/terminus/internal/adapters/storage/memory"
	"github.com/Ragnaroek/terminus/internal/domain"
	cfgpkg "github.com/Ragnaroek/terminus/internal/infrastructure/config"
	httpapi "github.com/Ragnaroek/terminus/internal/infrastructure/httpapi"
	obs "github.com/Ragnaroek/terminus/internal/infrastructure/observability"
	"github.com/Ragnaroek/terminus/internal/infrastructure/tui"
	"github.com/Ragnaroek/terminus/internal/usecase"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code so deferred cleanup always happens.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("terminus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		serve      = fs.Bool("serve", false, "Serve the HTTP/WebSocket API instead of the terminal UI")
		addr       = fs.String("addr", "", "Listen address for -serve (default $TERMINUS_ADDR or :9092)")
		configPath = fs.String("config", "", "YAML config file overlaid on environment settings")
		skipBad    = fs.Bool("skip-malformed", false, "Skip undecodable lines instead of aborting the load")
		execCmds   = fs.String("exec", "", "Run ';'-separated commands without the UI and print each result as JSON")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: terminus [flags] <trace-file>\n")
		fmt.Fprintf(stderr, "Example: terminus -exec ':f inspect max' trace.log\n")
		fmt.Fprintf(stderr, "\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)

	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *skipBad {
		cfg.SkipMalformed = true
	}

	logOut, closeLog := logWriter(cfg, *serve, *execCmds != "", stdout, stderr)
	defer closeLog()
	logger := obs.NewLogger(cfg.LogLevel, logOut)
	metrics := obs.NewMetrics()

	store := memory.NewStore(cfg.SessionMax, time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	src := file.Source{Opts: file.Options{
		MaxLineBytes:  cfg.MaxLineBytes,
		SkipMalformed: cfg.SkipMalformed,
		OnMalformed: func(mr *domain.MalformedRecord) {
			metrics.DecodeErrorsTotal.WithLabelValues(errorKind(mr)).Inc()
			logger.Warn().Err(mr.Cause).Int("line", mr.LineNo).Str("raw", mr.Line).Msg("skipping malformed line")
		},
	}}
	svc := usecase.NewTraceService(src, store)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := svc.Load(ctx, path)
	if err != nil {
		metrics.DecodeErrorsTotal.WithLabelValues(errorKind(err)).Inc()
		logger.Error().Err(err).Str("path", path).Msg("load failed")
		fmt.Fprintln(stderr, err)
		return 1
	}
	metrics.RecordsDecodedTotal.Add(float64(stats.Records))
	metrics.FramesLoaded.Set(float64(stats.Frames))
	metrics.LoadDuration.Observe(stats.Elapsed.Seconds())
	logger.Info().Str("path", path).Int("records", stats.Records).Int("frames", stats.Frames).Dur("elapsed", stats.Elapsed).Msg("trace loaded")

	switch {
	case *execCmds != "":
		runExec(stdout, svc.Frames(), *execCmds)
	case *serve:
		if err := runServer(ctx, cfg, logger, metrics, svc); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	default:
		m := tui.New(path, svc.Frames(), tui.Options{ChartHeight: cfg.ChartHeight, Logger: logger})
		if err := tui.Run(m); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	return 0
}

type execResult struct {
	Input      string      `json:"input"`
	Command    string      `json:"command"`
	Recognized bool        `json:"recognized"`
	Quit       bool        `json:"quit"`
	View       domain.View `json:"view"`
}

// runExec interprets each command in turn against one evolving view.
func runExec(w io.Writer, frames []domain.Frame, script string) {
	enc := json.NewEncoder(w)
	var view domain.View
	for _, line := range strings.Split(script, ";") {
		out := usecase.Interpret(frames, view, line)
		view = out.View
		_ = enc.Encode(execResult{
			Input:      strings.TrimSpace(line),
			Command:    out.Command.Kind.String(),
			Recognized: out.Recognized,
			Quit:       out.Quit,
			View:       view,
		})
		if out.Quit {
			return
		}
	}
}

func runServer(ctx context.Context, cfg cfgpkg.Config, logger *zerolog.Logger, metrics *obs.Metrics, svc *usecase.TraceService) error {
	deps := &httpapi.Deps{Cfg: cfg, Logger: logger, Metrics: metrics, Svc: svc, Monitor: httpapi.NewMonitorHub(), Live: httpapi.NewLiveSessions()}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	deps.Monitor.LogEvents(ctx, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("version", obs.Version).Msg("starting terminus api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("terminus api stopped")
	return nil
}

// logWriter picks the log destination: stdout for the API server, stderr
// for -exec, and LOG_FILE (or nowhere) while the terminal UI owns the screen.
func logWriter(cfg cfgpkg.Config, serve, exec bool, stdout, stderr io.Writer) (io.Writer, func()) {
	switch {
	case serve:
		return stdout, func() {}
	case exec:
		return stderr, func() {}
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(stderr, "open log file: %v\n", err)
			return io.Discard, func() {}
		}
		return f, func() { _ = f.Close() }
	default:
		return io.Discard, func() {}
	}
}

func errorKind(err error) string {
	var de *domain.DecodeError
	var mr *domain.MalformedRecord
	switch {
	case errors.As(err, &de):
		return "decode_error"
	case errors.As(err, &mr):
		return "malformed_record"
	default:
		return "load_error"
	}
}
