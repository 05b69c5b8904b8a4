// Package api is the HTTP client for the entity backend used by the TUI layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the backend REST API. Every call is scoped to a target
// (tenant/environment) and a collection name.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a backend client authenticated with the given bearer token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// GetEntities returns one page of the collection. A nil query fetches the
// backend's default page.
func (c *Client) GetEntities(ctx context.Context, target, collection string, q *Query) (Page, error) {
	u := c.collectionURL(target, collection)
	if vals := q.Values(); len(vals) > 0 {
		u += "?" + vals.Encode()
	}

	var body struct {
		Result []Entity `json:"result"`
		Total  *int     `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, u, nil, &body); err != nil {
		return Page{}, fmt.Errorf("listing %s for target %s: %w", collection, target, err)
	}

	page := Page{Entities: body.Result, Total: len(body.Result)}
	if body.Total != nil {
		page.Total = *body.Total
	}
	return page, nil
}

// UpdateEntity sends a partial update for one entity and returns the record
// echoed by the backend.
func (c *Client) UpdateEntity(ctx context.Context, target, collection, id string, fields Entity) (Entity, error) {
	u := c.collectionURL(target, collection) + "/" + url.PathEscape(id)

	var body struct {
		Result Entity `json:"result"`
	}
	if err := c.do(ctx, http.MethodPatch, u, fields, &body); err != nil {
		return nil, fmt.Errorf("updating %s %s for target %s: %w", collection, id, target, err)
	}
	return body.Result, nil
}

// AddEntities creates a batch of entities in one call.
func (c *Client) AddEntities(ctx context.Context, target, collection string, records []Entity) (AddResult, error) {
	if records == nil {
		records = []Entity{}
	}

	var body struct {
		Result AddResult `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, c.collectionURL(target, collection), records, &body); err != nil {
		return AddResult{}, fmt.Errorf("adding %d %s for target %s: %w", len(records), collection, target, err)
	}
	if body.Result.Added == 0 {
		body.Result.Added = len(records)
	}
	return body.Result, nil
}

func (c *Client) collectionURL(target, collection string) string {
	return c.baseURL + "/" + url.PathEscape(target) + "/" + url.PathEscape(collection)
}

// do performs a JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, u string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed", "method", method, "url", u, "error", err)
		return err
	}
	defer resp.Body.Close()
	c.logger.Debug("backend request", "method", method, "url", u, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &body) == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}
