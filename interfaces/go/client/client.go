package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http2"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client whose transport negotiates HTTP/2 with TLS servers.
func New(baseURL string) *Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	_ = http2.ConfigureTransport(tr)
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: &http.Client{Transport: tr, Timeout: 30 * time.Second}}
}

// APIError is the error envelope returned by the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("terminus api: %d %s: %s", e.Status, e.Code, e.Message)
}

type Record struct {
	SpanID   *uint64 `json:"spanId,omitempty"`
	SpanName string  `json:"spanName"`
	Target   string  `json:"target"`
	Message  string  `json:"message"`
	Level    string  `json:"level,omitempty"`
	BusyNs   int64   `json:"busyNs"`
	IdleNs   int64   `json:"idleNs"`
	TotalNs  int64   `json:"totalNs"`
	Total    string  `json:"total"`
}

type FrameSummary struct {
	Index int `json:"index"`
	Record
	Children int `json:"children"`
}

type FrameDetail struct {
	FrameSummary
	Records []Record `json:"records"`
}

type FramePage struct {
	Items []FrameSummary `json:"items"`
	Total int            `json:"total"`
	MaxNs int64          `json:"maxNs"`
	MaxMs float64        `json:"maxMs"`
}

type Filter struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DetailFrame is an inspected frame; children are ordered by descending
// total duration.
type DetailFrame struct {
	Record   Record   `json:"record"`
	Children []Record `json:"children"`
}

type Detail struct {
	Index int         `json:"index"`
	Frame DetailFrame `json:"frame"`
}

type View struct {
	Filter *Filter `json:"filter"`
	Detail *Detail `json:"detail"`
}

type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Commands  int       `json:"commands"`
	View      View      `json:"view"`
}

type CommandResult struct {
	Session    Session `json:"session"`
	Command    string  `json:"command"`
	Quit       bool    `json:"quit"`
	Recognized bool    `json:"recognized"`
	ClearInput bool    `json:"clearInput"`
}

// Frames lists frames; a nil window lists all of them.
func (c *Client) Frames(ctx context.Context, window *Filter) (FramePage, error) {
	path := "/api/frames"
	if window != nil {
		q := url.Values{}
		q.Set("from", fmt.Sprint(window.Start))
		q.Set("to", fmt.Sprint(window.End))
		path += "?" + q.Encode()
	}
	var out FramePage
	err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) Frame(ctx context.Context, index int) (FrameDetail, error) {
	var out FrameDetail
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/frames/%d", index), nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) ListSessions(ctx context.Context, limit, offset int) ([]Session, int, error) {
	var out struct {
		Items []Session `json:"items"`
		Total int       `json:"total"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/sessions?limit=%d&offset=%d", limit, offset), nil, http.StatusOK, &out)
	return out.Items, out.Total, err
}

func (c *Client) CreateSession(ctx context.Context) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/api/sessions", nil, http.StatusCreated, &out)
	return out, err
}

func (c *Client) Session(ctx context.Context, id string) (Session, error) {
	var out Session
	err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(id), nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+url.PathEscape(id), nil, http.StatusNoContent, nil)
}

// Exec runs one command line in the session.
func (c *Client) Exec(ctx context.Context, id, input string) (CommandResult, error) {
	var out CommandResult
	body := map[string]string{"input": input}
	err := c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(id)+"/commands", body, http.StatusOK, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		var env struct {
			Error APIError `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&env)
		env.Error.Status = resp.StatusCode
		return &env.Error
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
