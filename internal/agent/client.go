// Package agent is the Agent Gateway (AG): a thin, typed HTTP client
// for the three operations the orchestrator performs against opaque
// agent endpoints (architect, builder, specialist, reviewer are all
// the same wire contract, distinguished only by which operation the
// orchestrator invokes and which URL it targets).
package agent

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

	"github.com/agentwrangler/awcore/pkg/models"
)

// Client is the Agent Gateway. One Client is shared across every agent
// call in a pipeline run; it carries no per-call state.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// New creates a Client that bounds every call to timeout.
func New(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

type planRequest struct {
	Task string `json:"task"`
}

type planResponse struct {
	Components []models.Component `json:"components"`
}

// Plan calls an architect agent to break a task into components.
func (c *Client) Plan(ctx context.Context, url, task string) (models.Plan, error) {
	var resp planResponse
	if err := c.call(ctx, url, planRequest{Task: task}, &resp); err != nil {
		return models.Plan{}, err
	}
	return models.Plan{Components: resp.Components}, nil
}

type implementRequest struct {
	Task string `json:"task"`
}

type implementResponse struct {
	Diff   string `json:"diff"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// ImplementResult is a builder or specialist agent's output.
type ImplementResult struct {
	Diff   string
	Stdout string
	Stderr string
}

// Implement calls a builder or specialist agent to produce a diff for task.
func (c *Client) Implement(ctx context.Context, url, task string) (ImplementResult, error) {
	var resp implementResponse
	if err := c.call(ctx, url, implementRequest{Task: task}, &resp); err != nil {
		return ImplementResult{}, err
	}
	if strings.TrimSpace(resp.Diff) == "" {
		return ImplementResult{}, &AgentProtocolError{Reason: "diff is empty after trim"}
	}
	return ImplementResult{Diff: resp.Diff, Stdout: resp.Stdout, Stderr: resp.Stderr}, nil
}

type reviewRequest struct {
	Task  string   `json:"task"`
	Diffs []string `json:"diffs"`
}

type reviewResponse struct {
	Score     json.Number `json:"score"`
	Rationale string      `json:"rationale"`
}

// Review calls a reviewer agent to verdict a sequence of accepted diffs.
func (c *Client) Review(ctx context.Context, url, task string, diffs []string) (models.Review, error) {
	var resp reviewResponse
	if err := c.call(ctx, url, reviewRequest{Task: task, Diffs: diffs}, &resp); err != nil {
		return models.Review{}, err
	}
	score, err := resp.Score.Float64()
	if err != nil {
		return models.Review{}, &AgentProtocolError{Reason: "score is not numeric", Err: err}
	}
	return models.Review{Score: models.ClampScore(score), Rationale: resp.Rationale}, nil
}

// call performs the shared request/response plumbing: encode the body,
// POST with the client's timeout, decode the JSON response, and map
// failures onto the agent error taxonomy.
func (c *Client) call(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &AgentProtocolError{Reason: "failed to encode request", Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &AgentProtocolError{Reason: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return &AgentTimeout{Err: err}
		}
		return &AgentProtocolError{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &AgentProtocolError{Reason: "failed to read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &AgentHTTPError{Status: resp.StatusCode, Body: bodyExcerpt(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &AgentProtocolError{Reason: fmt.Sprintf("malformed response from %s", url), Err: err}
	}
	return nil
}
