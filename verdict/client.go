// Package verdict talks to the remote judging backend.
package verdict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/linesmerrill/ai-court-api/metrics"
	"github.com/linesmerrill/ai-court-api/models"
)

// CaseSubmission is the body of POST /verdict
type CaseSubmission struct {
	Plaintiff string `json:"plaintiff"`
	Defendant string `json:"defendant"`
	Evidence  string `json:"evidence"`
}

// Response is the ruling returned by POST /verdict
type Response struct {
	Winner         string   `json:"winner"`
	Reasoning      string   `json:"reasoning,omitempty"`
	Confidence     string   `json:"confidence"`
	Model          string   `json:"model"`
	PlaintiffScore *float64 `json:"plaintiff_score,omitempty"`
	DefendantScore *float64 `json:"defendant_score,omitempty"`
}

// ReasoningRequest is the body of POST /api/genai_reason
type ReasoningRequest struct {
	Plaintiff string `json:"plaintiff"`
	Defendant string `json:"defendant"`
	Evidence  string `json:"evidence"`
	Verdict   string `json:"verdict"`
}

// ReasoningResponse is the explanation returned by POST /api/genai_reason
type ReasoningResponse struct {
	Reasoning string `json:"reasoning"`
	Model     string `json:"model"`
}

// Judge is what the workflows need from the judging backend
type Judge interface {
	SubmitCase(ctx context.Context, c CaseSubmission) (*Response, error)
	GenerateReasoning(ctx context.Context, r ReasoningRequest) (*ReasoningResponse, error)
	Health(ctx context.Context) bool
}

// Client is the HTTP client of the judging backend. It sets no timeout of its
// own; callers bound a request through its context.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
	}
}

// ToVerdict merges a ruling and its reasoning into the stored verdict
func ToVerdict(v *Response, r *ReasoningResponse) models.Verdict {
	return models.Verdict{
		Winner:         v.Winner,
		Reasoning:      r.Reasoning,
		Confidence:     v.Confidence,
		Model:          v.Model,
		PlaintiffScore: v.PlaintiffScore,
		DefendantScore: v.DefendantScore,
		ReasoningModel: r.Model,
	}
}

// SubmitCase asks the backend for a ruling
func (c *Client) SubmitCase(ctx context.Context, cs CaseSubmission) (*Response, error) {
	var out Response
	if err := c.postJSON(ctx, "submit case", "/verdict", cs, &out); err != nil {
		metrics.VerdictRequests.WithLabelValues("verdict", metrics.OutcomeError).Inc()
		return nil, err
	}
	if out.Winner == "" {
		metrics.VerdictRequests.WithLabelValues("verdict", metrics.OutcomeError).Inc()
		return nil, &models.MalformedResponseError{Op: "submit case", Err: errors.New("missing winner")}
	}
	metrics.VerdictRequests.WithLabelValues("verdict", metrics.OutcomeSuccess).Inc()
	return &out, nil
}

// GenerateReasoning asks the backend to explain a ruling
func (c *Client) GenerateReasoning(ctx context.Context, rr ReasoningRequest) (*ReasoningResponse, error) {
	var out ReasoningResponse
	if err := c.postJSON(ctx, "generate reasoning", "/api/genai_reason", rr, &out); err != nil {
		metrics.VerdictRequests.WithLabelValues("reasoning", metrics.OutcomeError).Inc()
		return nil, err
	}
	metrics.VerdictRequests.WithLabelValues("reasoning", metrics.OutcomeSuccess).Inc()
	return &out, nil
}

// Health reports whether the backend answers its liveness probe
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		zap.S().Debugw("judging backend health check failed", "url", c.BaseURL, "error", err)
		metrics.VerdictRequests.WithLabelValues("health", metrics.OutcomeError).Inc()
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	outcome := metrics.OutcomeSuccess
	if !ok {
		outcome = metrics.OutcomeError
	}
	metrics.VerdictRequests.WithLabelValues("health", outcome).Inc()
	return ok
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: failed to encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return &models.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &models.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &models.NetworkError{Op: op, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &models.MalformedResponseError{Op: op, Err: err}
	}
	return nil
}
