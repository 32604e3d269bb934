// Package api is the HTTP client for the agent backend. The backend reports
// most failures as 200 responses carrying a {"status": "error"} body, so the
// client inspects bodies as well as status codes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/agentdeck-io/agentdeck/internal/models"
)

// Client talks to one agent backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// statusResponse mirrors GET /api/status.
type statusResponse struct {
	IsRunning       bool               `json:"is_running"`
	WaitingForInput bool               `json:"waiting_for_input"`
	Logs            []models.LogEntry  `json:"logs"`
}

// WorkspaceInfo mirrors GET /api/workspace.
type WorkspaceInfo struct {
	WorkspaceRoot       string `json:"workspace_root"`
	TargetRoot          string `json:"target_root"`
	ActiveWorkspaceRoot string `json:"active_workspace_root"`
	FileCount           int    `json:"file_count"`
	TotalSize           int64  `json:"total_size"`
}

// RunRequest is the POST /api/run body.
type RunRequest struct {
	Goal          string          `json:"goal"`
	WorkspaceRoot string          `json:"workspace_root,omitempty"`
	Config        map[string]bool `json:"config,omitempty"`
}

// genericResponse covers the status/message envelope most mutating endpoints
// reply with.
type genericResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// configResponse mirrors GET /api/config.
type configResponse struct {
	Config models.FeatureFlags `json:"config"`
}

// createWorkspaceResponse mirrors POST /api/create-workspace.
type createWorkspaceResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Workspace string `json:"workspace"`
	Group     string `json:"group"`
}

// Status fetches the run-state snapshot. Log kinds the backend sends that
// this build does not know are degraded to the plain log kind here, so
// nothing downstream ever sees a raw wire string.
func (c *Client) Status(ctx context.Context) (models.Snapshot, error) {
	var resp statusResponse
	if err := c.getJSON(ctx, "/api/status", nil, &resp); err != nil {
		return models.Snapshot{}, err
	}
	for i := range resp.Logs {
		resp.Logs[i].Kind = models.ParseLogKind(string(resp.Logs[i].Kind))
	}
	return models.Snapshot{
		Running:         resp.IsRunning,
		WaitingForInput: resp.WaitingForInput,
		Logs:            resp.Logs,
	}, nil
}

// Workspace fetches workspace stats, optionally for a specific root.
func (c *Client) Workspace(ctx context.Context, root string) (WorkspaceInfo, error) {
	q := url.Values{}
	if root != "" {
		q.Set("root", root)
	}
	var info WorkspaceInfo
	if err := c.getJSON(ctx, "/api/workspace", q, &info); err != nil {
		return WorkspaceInfo{}, err
	}
	return info, nil
}

// Snapshot assembles one poll tick: run state plus the active workspace. The
// workspace call is best-effort; its failure does not invalidate the snapshot.
func (c *Client) Snapshot(ctx context.Context) (models.Snapshot, error) {
	snap, err := c.Status(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	if info, err := c.Workspace(ctx, ""); err == nil {
		snap.ActiveWorkspace = info.ActiveWorkspaceRoot
	}
	return snap, nil
}

// Run starts a goal on the backend.
func (c *Client) Run(ctx context.Context, req RunRequest) error {
	var resp genericResponse
	if err := c.postJSON(ctx, "/api/run", nil, req, &resp); err != nil {
		return err
	}
	return resp.err()
}

// Stop requests the running agent to stop. Stopping is cooperative on the
// backend side; the caller is responsible for any timeout handling.
func (c *Client) Stop(ctx context.Context) error {
	var resp genericResponse
	if err := c.postJSON(ctx, "/api/stop", nil, nil, &resp); err != nil {
		return err
	}
	return resp.err()
}

// ProvideInput answers a pending input request.
func (c *Client) ProvideInput(ctx context.Context, text string) error {
	var resp genericResponse
	body := map[string]string{"text": text}
	if err := c.postJSON(ctx, "/api/input", nil, body, &resp); err != nil {
		return err
	}
	return resp.err()
}

// CancelInput dismisses a pending input request.
func (c *Client) CancelInput(ctx context.Context) error {
	var resp genericResponse
	if err := c.postJSON(ctx, "/api/cancel-input", nil, nil, &resp); err != nil {
		return err
	}
	return resp.err()
}

// Config fetches the backend's effective feature flags.
func (c *Client) Config(ctx context.Context) (models.FeatureFlags, error) {
	var resp configResponse
	if err := c.getJSON(ctx, "/api/config", nil, &resp); err != nil {
		return models.FeatureFlags{}, err
	}
	return resp.Config, nil
}

// CreateWorkspace provisions a fresh workspace directory on the backend,
// optionally nested under a group, and returns the generated name.
func (c *Client) CreateWorkspace(ctx context.Context, group string) (string, error) {
	q := url.Values{}
	if group != "" {
		q.Set("group", group)
	}
	var resp createWorkspaceResponse
	if err := c.postJSON(ctx, "/api/create-workspace", q, nil, &resp); err != nil {
		return "", err
	}
	if resp.Status == "error" {
		return "", fmt.Errorf("backend error: %s", resp.Message)
	}
	return resp.Workspace, nil
}

// DeleteWorkspace removes a workspace directory on the backend.
func (c *Client) DeleteWorkspace(ctx context.Context, workspace, group string) error {
	q := url.Values{"workspace": {workspace}}
	if group != "" {
		q.Set("group", group)
	}
	var resp genericResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/delete-workspace", q, nil, &resp); err != nil {
		return err
	}
	return resp.err()
}

func (r genericResponse) err() error {
	if r.Status == "error" {
		return fmt.Errorf("backend error: %s", r.Message)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backend returned %s: %s", resp.Status, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}
