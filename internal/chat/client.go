package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNotConfigured means the backend base URL is unset; the proxy fails
// closed without attempting a call.
var ErrNotConfigured = errors.New("chat backend not configured")

// BackendError carries a non-success backend reply so the handler can relay
// the status code and raw body for diagnostics.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

// Client forwards chat turns to the external recommendation backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTPClient: &http.Client{}}
}

// Send posts one turn to {base}/chat and returns the raw reply bytes along
// with the decoded form. The raw bytes are what gets relayed downstream;
// the decoded form feeds session history.
func (c *Client) Send(ctx context.Context, req Request) ([]byte, *Response, error) {
	if c.BaseURL == "" {
		return nil, nil, ErrNotConfigured
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("chat backend request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read chat backend reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &BackendError{Status: resp.StatusCode, Body: string(body)}
	}

	var decoded Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, nil, fmt.Errorf("decode chat backend reply: %w", err)
	}
	return body, &decoded, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
