// Package httpclient sends the JSON requests the publisher and collections
// need, with optional gzip-compressed responses.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// StatusError is returned for non-2xx responses unless the request asked for
// the full response.
type StatusError struct {
	URI        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request %s failed with status %d", e.URI, e.StatusCode)
}

// Request describes one call. Method defaults to GET. With JSON set, Body is
// encoded as JSON and the content type is set accordingly.
type Request struct {
	URI          string
	Method       string
	Body         any
	JSON         bool
	FullResponse bool
	Gzip         bool
	Headers      map[string]string
}

// Response is the decoded reply. Body is already decompressed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON unmarshals the body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Doer is what the rest of the module depends on.
type Doer interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// Client implements Doer on top of net/http.
type Client struct {
	client  *http.Client
	headers map[string]string
	logger  *slog.Logger
}

// New creates a Client. headers are sent on every request; per-request
// headers win.
func New(client *http.Client, headers map[string]string, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	copied := make(map[string]string, len(headers))
	for k, v := range headers {
		copied[k] = v
	}
	return &Client{client: client, headers: copied, logger: logger}
}

func (c *Client) Send(ctx context.Context, r Request) (*Response, error) {
	if r.URI == "" {
		return nil, errors.New("request uri is required")
	}
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	body, contentType, err := encodeBody(r)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URI, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.JSON {
		req.Header.Set("Accept", "application/json")
	}
	if r.Gzip {
		// Setting the header ourselves turns off net/http's transparent
		// decompression, so the body is decoded below.
		req.Header.Set("Accept-Encoding", "gzip")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", r.URI, err)
	}
	c.logger.Debug("http request",
		slog.String("method", method),
		slog.String("uri", r.URI),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(data)),
		slog.Duration("took", time.Since(start)),
	)

	if !r.FullResponse && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return nil, &StatusError{URI: r.URI, StatusCode: resp.StatusCode, Body: data}
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func encodeBody(r Request) (io.Reader, string, error) {
	if r.Body == nil {
		return nil, "", nil
	}
	if r.JSON {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
	switch b := r.Body.(type) {
	case string:
		return strings.NewReader(b), "text/plain; charset=utf-8", nil
	case []byte:
		return bytes.NewReader(b), "application/octet-stream", nil
	case io.Reader:
		return b, "", nil
	default:
		return nil, "", fmt.Errorf("body of type %T requires JSON encoding", r.Body)
	}
}

func readBody(resp *http.Response) ([]byte, error) {
	if !strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		return io.ReadAll(resp.Body)
	}
	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}
