package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ragnaroek/terminus/internal/adapters/source/file"
	"github.com/Ragnaroek/terminus/internal/adapters/storage/memory"
	"github.com/Ragnaroek/terminus/internal/infrastructure/config"
	httpapi "github.com/Ragnaroek/terminus/internal/infrastructure/httpapi"
	obs "github.com/Ragnaroek/terminus/internal/infrastructure/observability"
	"github.com/Ragnaroek/terminus/internal/usecase"
)

const trace = `{"fields":{"message":"close","time.busy":"4ms","time.idle":"1ms"},"target":"iw::test","span":{"id":0,"name":"frame"}}
{"fields":{"message":"close","time.busy":"1ms","time.idle":"0ns"},"target":"iw::test","span":{"name":"calc_tics"}}
{"fields":{"message":"close","time.busy":"9ms","time.idle":"0ns"},"target":"iw::test","span":{"id":1,"name":"frame"}}
{"fields":{"message":"close","time.busy":"2ms","time.idle":"0ns"},"target":"iw::test","span":{"name":"calc_tics"}}
{"fields":{"message":"close","time.busy":"6ms","time.idle":"0ns"},"target":"iw::test","span":{"name":"draw"}}
{"fields":{"message":"close","time.busy":"3ms","time.idle":"0ns"},"target":"iw::test","span":{"id":2,"name":"frame"}}
`

func newTestClient(t *testing.T) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.log")
	if err := os.WriteFile(path, []byte(trace), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := usecase.NewTraceService(file.Source{}, memory.NewStore(10, time.Hour))
	if _, err := svc.Load(context.Background(), path); err != nil {
		t.Fatalf("load: %v", err)
	}
	logger := zerolog.Nop()
	d := &httpapi.Deps{Cfg: config.Config{CORSAllowOrigin: "*"}, Logger: &logger, Metrics: obs.NewMetrics(), Svc: svc}
	srv := httptest.NewServer(httpapi.NewRouter(d))
	t.Cleanup(srv.Close)
	c := New(srv.URL)
	c.HTTP = srv.Client()
	return c
}

func TestFrames(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	page, err := c.Frames(ctx, nil)
	if err != nil {
		t.Fatalf("frames: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 3 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.MaxNs != int64(9*time.Millisecond) {
		t.Fatalf("maxNs = %d", page.MaxNs)
	}
	if page.Items[0].TotalNs != int64(5*time.Millisecond) {
		t.Fatalf("frame 0 total = %d", page.Items[0].TotalNs)
	}

	page, err = c.Frames(ctx, &Filter{Start: 1, End: 2})
	if err != nil {
		t.Fatalf("frames window: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].Index != 1 {
		t.Fatalf("unexpected window: %+v", page.Items)
	}

	f, err := c.Frame(ctx, 1)
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if f.Children != 2 || len(f.Records) != 2 || f.Records[1].SpanName != "draw" {
		t.Fatalf("unexpected frame detail: %+v", f)
	}

	_, err = c.Frame(ctx, 9)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 404 || apiErr.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND api error, got %v", err)
	}
}

func TestSessionCommands(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	sess, err := c.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("empty session id")
	}

	res, err := c.Exec(ctx, sess.ID, ":f 0..1")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if !res.Recognized || res.Session.View.Filter == nil || res.Session.View.Filter.End != 1 {
		t.Fatalf("unexpected filter result: %+v", res)
	}

	res, err = c.Exec(ctx, sess.ID, ":f inspect max")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	det := res.Session.View.Detail
	if det == nil || det.Index != 1 {
		t.Fatalf("expected detail of frame 1, got %+v", det)
	}
	if len(det.Frame.Children) != 2 || det.Frame.Children[0].SpanName != "draw" {
		t.Fatalf("children not sorted by total: %+v", det.Frame.Children)
	}

	items, total, err := c.ListSessions(ctx, 10, 0)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("list: %v %d %d", err, total, len(items))
	}

	got, err := c.Session(ctx, sess.ID)
	if err != nil || got.Commands != 2 {
		t.Fatalf("get: %v %+v", err, got)
	}

	if err := c.DeleteSession(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = c.Exec(ctx, sess.ID, ":q")
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND after delete, got %v", err)
	}
}
