// Package genai renders a verdict with a chat-completions language model.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/linesmerrill/ai-court-api/metrics"
	"github.com/linesmerrill/ai-court-api/models"
)

const maxTokens = 2048

// VerdictRequest is the case the model is asked to judge
type VerdictRequest struct {
	CaseTitle          string `json:"caseTitle"`
	CaseNumber         string `json:"caseNumber"`
	CaseDescription    string `json:"caseDescription"`
	PlaintiffStatement string `json:"plaintiffStatement"`
	DefendantStatement string `json:"defendantStatement"`
}

type requestPayload struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Generator renders verdicts
type Generator interface {
	GenerateVerdict(ctx context.Context, req VerdictRequest) (*models.GeneratedVerdict, error)
}

// Client calls an OpenAI compatible chat-completions endpoint
type Client struct {
	URL        string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// NewClient creates a chat-completions client
func NewClient(url, apiKey, model string) *Client {
	return &Client{URL: url, APIKey: apiKey, Model: model, HTTPClient: &http.Client{}}
}

// Prompt builds the judge instructions for a case
func Prompt(req VerdictRequest) string {
	return fmt.Sprintf(`You are an AI Judge rendering a legal verdict. Analyze the following case:

Case Title: %s
Case Number: %s
Case Description: %s

Plaintiff's Statement:
%s

Defendant's Statement:
%s

Based on the evidence and arguments presented, provide:
1. A clear verdict (ruling in favor of either the Plaintiff or Defendant)
2. The reasoning behind your decision (consider legal principles, evidence strength, argumentation quality)

Format your response as JSON with two fields: "decision" and "reasoning".
The decision should start with "VERDICT:" and clearly state who won.
The reasoning should be 2-3 paragraphs explaining your judgment.`,
		req.CaseTitle, req.CaseNumber, req.CaseDescription, req.PlaintiffStatement, req.DefendantStatement)
}

// GenerateVerdict asks the model for a verdict. Output that is not the expected
// JSON object is a MalformedResponseError; nothing is retried.
func (c *Client) GenerateVerdict(ctx context.Context, req VerdictRequest) (*models.GeneratedVerdict, error) {
	text, err := c.complete(ctx, Prompt(req))
	if err != nil {
		metrics.VerdictRequests.WithLabelValues("generate", metrics.OutcomeError).Inc()
		return nil, err
	}
	v, err := ParseVerdict(text)
	if err != nil {
		metrics.VerdictRequests.WithLabelValues("generate", metrics.OutcomeError).Inc()
		return nil, err
	}
	metrics.VerdictRequests.WithLabelValues("generate", metrics.OutcomeSuccess).Inc()
	return v, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	const op = "generate verdict"
	payload := requestPayload{
		Model:     c.Model,
		Messages:  []message{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%s: failed to encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", &models.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", &models.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &models.NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	var out apiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &models.MalformedResponseError{Op: op, Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &models.MalformedResponseError{Op: op, Err: errors.New("no choices in response")}
	}
	return out.Choices[0].Message.Content, nil
}

// ParseVerdict reads the model text as a {decision, reasoning} object. A
// surrounding markdown code fence is tolerated.
func ParseVerdict(text string) (*models.GeneratedVerdict, error) {
	const op = "parse verdict"
	text = stripFence(strings.TrimSpace(text))

	var v models.GeneratedVerdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &models.MalformedResponseError{Op: op, Err: err}
	}
	if strings.TrimSpace(v.Decision) == "" {
		return nil, &models.MalformedResponseError{Op: op, Err: errors.New("missing decision")}
	}
	return &v, nil
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// drop the language tag line
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}
