// Package jsonbox is a small client for the jsonbox.io document store.
//
// A box is a collection addressed as {BaseURL}/{BoxID}; every record in it
// gets a server-assigned _id. dragdo keeps the whole list in a single record
// and rewrites it in place.
package jsonbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultBaseURL is the public jsonbox endpoint.
const DefaultBaseURL = "https://jsonbox.io"

// ErrMalformedResponse wraps responses whose body is not the expected JSON.
var ErrMalformedResponse = errors.New("jsonbox: malformed response")

// maxErrorBody caps how much of a failed response body is kept on StatusError.
const maxErrorBody = 512

// Config holds configuration for a Client.
type Config struct {
	// BaseURL is the service root. Defaults to DefaultBaseURL.
	BaseURL string

	// BoxID names the collection, e.g. "box_9dabf4f5cb4d73ea4791". Required.
	BoxID string

	// HTTPClient is used for every request. Defaults to a client with
	// Timeout, which is zero (no timeout) unless set.
	HTTPClient *http.Client
	Timeout    time.Duration

	Logger *log.Logger
}

// Document is the body written to a record.
type Document struct {
	Items string `json:"items"`
}

// Record is a stored document plus the metadata jsonbox adds.
type Record struct {
	ID        string `json:"_id"`
	Items     string `json:"items"`
	CreatedOn string `json:"_createdOn,omitempty"`
	UpdatedOn string `json:"_updatedOn,omitempty"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("jsonbox: %s %s: HTTP %d", e.Method, e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client implements Create, Replace and Read against one box.
type Client struct {
	boxURL     string
	httpClient *http.Client
	logger     *log.Logger
}

func New(cfg Config) (*Client, error) {
	box := strings.Trim(strings.TrimSpace(cfg.BoxID), "/")
	if box == "" {
		return nil, fmt.Errorf("jsonbox: box id is required")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("jsonbox: base url must be http(s), got %q", base)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		boxURL:     base + "/" + box,
		httpClient: hc,
		logger:     logger,
	}, nil
}

// BoxURL returns the collection URL requests are sent to.
func (c *Client) BoxURL() string { return c.boxURL }

// Create stores doc as a new record and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, doc Document) (Record, error) {
	var rec Record
	err := c.do(ctx, http.MethodPost, c.boxURL, doc, &rec)
	return rec, err
}

// Replace overwrites the record id with doc.
func (c *Client) Replace(ctx context.Context, id string, doc Document) (Record, error) {
	var rec Record
	u, err := c.recordURL(id)
	if err != nil {
		return rec, err
	}
	// jsonbox answers PUT with a status message, not the record.
	var ack struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPut, u, doc, &ack); err != nil {
		return rec, err
	}
	rec.ID = id
	rec.Items = doc.Items
	return rec, nil
}

// Read fetches the record id.
func (c *Client) Read(ctx context.Context, id string) (Record, error) {
	var rec Record
	u, err := c.recordURL(id)
	if err != nil {
		return rec, err
	}
	err = c.do(ctx, http.MethodGet, u, nil, &rec)
	return rec, err
}

func (c *Client) recordURL(id string) (string, error) {
	id = strings.Trim(strings.TrimSpace(id), "/")
	if id == "" {
		return "", fmt.Errorf("jsonbox: record id is required")
	}
	return c.boxURL + "/" + id, nil
}

func (c *Client) do(ctx context.Context, method, url string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("jsonbox: marshal body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return fmt.Errorf("jsonbox: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jsonbox: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("jsonbox request", "method", method, "url", url, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: method,
			URL:    url,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(b)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("jsonbox: read body: %w", err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrMalformedResponse, err)
	}
	return nil
}
