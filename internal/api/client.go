package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client talks to the notes backend over HTTP/JSON. It holds no state beyond
// its configuration and is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	log       zerolog.Logger
	userAgent string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request, whatever HTTP client is in use. Zero means
// requests may hang until the caller's context is done.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a client for baseURL. An empty baseURL is kept as is, so
// request paths stay relative.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		log:       zerolog.Nop(),
		userAgent: "forge",
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) CreateNote(ctx context.Context, content string) (ProcessedNote, error) {
	var note ProcessedNote
	err := c.do(ctx, http.MethodPost, "/api/notes", createRequest{Content: content}, &note)
	return note, err
}

func (c *Client) ListNotes(ctx context.Context, opts ListOptions) (NotesPage, error) {
	opts = opts.resolved()
	params := url.Values{}
	if opts.Category != "" {
		params.Set("category", opts.Category)
	}
	params.Set("limit", strconv.Itoa(opts.Limit))
	params.Set("offset", strconv.Itoa(opts.Offset))

	var page NotesPage
	if err := c.do(ctx, http.MethodGet, "/api/notes?"+params.Encode(), nil, &page); err != nil {
		return NotesPage{}, err
	}
	if page.Notes == nil {
		page.Notes = []ProcessedNote{}
	}
	return page, nil
}

func (c *Client) GetNote(ctx context.Context, id string) (ProcessedNote, error) {
	var note ProcessedNote
	err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(id), nil, &note)
	return note, err
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]CategoryCount, error) {
	var resp categoriesResponse
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &h)
	return h, err
}

// do issues one request and decodes a 2xx body into out. A nil out discards
// the body.
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Str("request_id", reqID).Str("method", method).Str("path", endpoint).
			Err(err).Msg("request failed")
		return &TransportError{Method: method, Path: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Path: endpoint, Err: err}
	}

	c.log.Debug().Str("request_id", reqID).Str("method", method).Str("path", endpoint).
		Int("status", resp.StatusCode).Dur("latency", time.Since(start)).Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, data, reqID)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, endpoint, err)
	}
	return nil
}
