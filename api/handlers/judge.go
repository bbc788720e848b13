package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/linesmerrill/ai-court-api/api"
	"github.com/linesmerrill/ai-court-api/genai"
	"github.com/linesmerrill/ai-court-api/models"
	"github.com/linesmerrill/ai-court-api/verdict"
)

// Judge exported for testing purposes
type Judge struct {
	Client verdict.Judge
	URL    string
}

// JudgeHealthHandler reports whether the judging backend is reachable
func (j Judge) JudgeHealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	api.WriteJSON(w, http.StatusOK, models.JudgeHealthResponse{
		Healthy: j.Client.Health(ctx),
		URL:     j.URL,
	})
}

// GenerateVerdict exported for testing purposes
type GenerateVerdict struct {
	Generator genai.Generator
}

// GenerateVerdictHandler asks the language model for a verdict. Every failure
// is reported with the same generic body.
func (g GenerateVerdict) GenerateVerdictHandler(w http.ResponseWriter, r *http.Request) {
	var req genai.VerdictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.fail(w, err)
		return
	}

	v, err := g.Generator.GenerateVerdict(r.Context(), req)
	if err != nil {
		g.fail(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, v)
}

func (g GenerateVerdict) fail(w http.ResponseWriter, err error) {
	zap.S().Errorw("Error generating verdict", "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	io.WriteString(w, `{"error": "Failed to generate verdict"}`)
}
