package genai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/ai-court-api/genai"
	"github.com/linesmerrill/ai-court-api/models"
)

func completion(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain", `{"decision":"VERDICT: Plaintiff wins","reasoning":"r"}`},
		{"fenced", "```json\n{\"decision\":\"VERDICT: Plaintiff wins\",\"reasoning\":\"r\"}\n```"},
		{"bare fence", "```\n{\"decision\":\"VERDICT: Plaintiff wins\",\"reasoning\":\"r\"}```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := genai.ParseVerdict(tt.text)
			require.NoError(t, err)
			assert.Equal(t, "VERDICT: Plaintiff wins", v.Decision)
			assert.Equal(t, "r", v.Reasoning)
		})
	}
}

func TestParseVerdictMalformed(t *testing.T) {
	for _, text := range []string{
		"The plaintiff wins.",
		`{"reasoning":"no decision"}`,
		"",
	} {
		_, err := genai.ParseVerdict(text)
		var me *models.MalformedResponseError
		assert.True(t, errors.As(err, &me), text)
	}
}

func TestClient_GenerateVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "openai/gpt-4o-mini", body.Model)
		require.Len(t, body.Messages, 1)
		assert.True(t, strings.Contains(body.Messages[0].Content, "Case Number: 2024-17"))
		w.Write([]byte(completion(`{"decision":"VERDICT: Defendant","reasoning":"Insufficient evidence."}`)))
	}))
	defer srv.Close()

	c := genai.NewClient(srv.URL, "secret", "openai/gpt-4o-mini")
	v, err := c.GenerateVerdict(context.Background(), genai.VerdictRequest{
		CaseTitle:          "Doe v. Roe",
		CaseNumber:         "2024-17",
		CaseDescription:    "Unpaid invoice",
		PlaintiffStatement: "I sent the invoice.",
		DefendantStatement: "I never received it.",
	})

	require.NoError(t, err)
	assert.Equal(t, "VERDICT: Defendant", v.Decision)
}

func TestClient_GenerateVerdictMalformedOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completion("I think the defendant wins.")))
	}))
	defer srv.Close()

	_, err := genai.NewClient(srv.URL, "", "m").GenerateVerdict(context.Background(), genai.VerdictRequest{})

	var me *models.MalformedResponseError
	assert.True(t, errors.As(err, &me))
}

func TestClient_GenerateVerdictUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := genai.NewClient(srv.URL, "", "m").GenerateVerdict(context.Background(), genai.VerdictRequest{})

	var ne *models.NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, http.StatusTooManyRequests, ne.StatusCode)
}

func TestClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := genai.NewClient(srv.URL, "", "m").GenerateVerdict(context.Background(), genai.VerdictRequest{})

	var me *models.MalformedResponseError
	assert.True(t, errors.As(err, &me))
}
