package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/ai-court-api/models"
)

func TestCaseJSONRoundTripIsByteIdentical(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{
			name: "resolved",
			json: `{"id":"01HQ","title":"Fence","plaintiff":"It is mine","defendant":"It is not","evidence":"survey","verdict":{"winner":"Plaintiff","reasoning":"The survey.","confidence":"High","model":"legal-bert","plaintiff_score":0.8,"defendant_score":0.2},"status":"resolved","createdAt":"2024-03-01T12:00:00Z","ownerId":"u1"}`,
		},
		{
			name: "completed synonym is kept",
			json: `{"id":"02","title":"Dog","plaintiff":"Bit me","defendant":"Did not","verdict":{"winner":"Defendant","reasoning":"","confidence":"Low","model":"m"},"status":"completed","createdAt":"2023-01-02T03:04:05Z"}`,
		},
		{
			name: "empty evidence is kept",
			json: `{"id":"04","title":"Gate","plaintiff":"Left open","defendant":"Was shut","evidence":"","status":"pending","createdAt":"2024-03-01T12:00:00Z"}`,
		},
		{
			name: "pending",
			json: `{"id":"03","title":"Rent","plaintiff":"Unpaid","defendant":"Paid","status":"pending","createdAt":"2024-03-01T12:00:00Z"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c models.Case
			require.NoError(t, json.Unmarshal([]byte(tt.json), &c))
			b, err := json.Marshal(c)
			require.NoError(t, err)
			assert.Equal(t, tt.json, string(b))
		})
	}
}

func TestCaseUnmarshalRejectsInconsistentState(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"resolved without verdict", `{"id":"1","status":"resolved"}`},
		{"completed without verdict", `{"id":"1","status":"completed"}`},
		{"pending with verdict", `{"id":"1","status":"pending","verdict":{"winner":"Plaintiff"}}`},
		{"unknown status", `{"id":"1","status":"archived"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c models.Case
			assert.Error(t, json.Unmarshal([]byte(tt.json), &c))
		})
	}
}

func TestCaseState(t *testing.T) {
	c := models.Case{ID: "1", CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	assert.False(t, c.IsResolved())

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status":"pending"`)
	assert.NotContains(t, string(b), `"verdict"`)

	c.State = models.Resolved{Verdict: models.Verdict{Winner: "Defendant"}}
	v, ok := c.Verdict()
	assert.True(t, ok)
	assert.Equal(t, "Defendant", v.Winner)
	assert.Equal(t, models.CaseStatusResolved, c.State.Status())
}

func TestParseRole(t *testing.T) {
	r, err := models.ParseRole("defendant")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDefendant, r)
	assert.Equal(t, "Defendant", r.Title())

	_, err = models.ParseRole("judge")
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "role", ve.Field)
}
