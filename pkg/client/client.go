// Package client is a small HTTP client for the procsnap daemon API. It is
// used by the CLI when --api-url is supplied and is suitable for embedding.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/procsnap/procsnap/internal/action"
	"github.com/procsnap/procsnap/internal/snapshot"
)

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig points at a daemon on the local host.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:8080/api",
		Timeout: 10 * time.Second,
	}
}

// Client talks to a running procsnap daemon.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client from cfg, filling unset fields from DefaultConfig.
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// ProcessList is the daemon's process listing response.
type ProcessList struct {
	TakenAt   time.Time         `json:"taken_at"`
	Count     int               `json:"count"`
	Processes snapshot.Snapshot `json:"processes"`
}

// Processes fetches the current filtered process view.
func (c *Client) Processes(ctx context.Context, filter string) (ProcessList, error) {
	var out ProcessList
	path := "/processes"
	if filter != "" {
		path += "?filter=" + url.QueryEscape(filter)
	}
	err := c.getJSON(ctx, path, &out)
	return out, err
}

// Tree fetches the descendant pids of one process.
func (c *Client) Tree(ctx context.Context, pid int32) ([]int32, error) {
	var out struct {
		Descendants []int32 `json:"descendants"`
	}
	err := c.getJSON(ctx, fmt.Sprintf("/processes/%d/tree", pid), &out)
	return out.Descendants, err
}

// ActionRequest mirrors the daemon's POST /actions body.
type ActionRequest struct {
	Action string  `json:"action"`
	PIDs   []int32 `json:"pids"`
	Tree   bool    `json:"tree"`
}

// Apply dispatches a bulk action on the daemon host.
func (c *Client) Apply(ctx context.Context, req ActionRequest) (action.Result, error) {
	var res action.Result
	body, err := json.Marshal(req)
	if err != nil {
		return res, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/actions", bytes.NewReader(body))
	if err != nil {
		return res, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return res, err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := decodeResponse(resp, &res); err != nil {
		return res, err
	}
	return res, nil
}

// Export fetches rendered export text from the daemon.
func (c *Client) Export(ctx context.Context, format, filter string) (string, error) {
	path := "/export?format=" + url.QueryEscape(format)
	if filter != "" {
		path += "&filter=" + url.QueryEscape(filter)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("daemon returned %d: %s", resp.StatusCode, string(b))
	}
	return string(b), nil
}

// Healthy reports whether the daemon answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("daemon returned %d", resp.StatusCode)
	}
	return json.Unmarshal(b, out)
}
