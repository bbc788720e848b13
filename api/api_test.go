package api_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shaj13/go-guardian/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/ai-court-api/api"
	"github.com/linesmerrill/ai-court-api/databases"
	"github.com/linesmerrill/ai-court-api/debate"
	"github.com/linesmerrill/ai-court-api/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &models.ValidationError{Field: "title", Message: "required"}, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("lookup: %w", &models.NotFoundError{Kind: "case", ID: "1"}), http.StatusNotFound},
		{"network", fmt.Errorf("failed to get verdict: %w", &models.NetworkError{Op: "submit case", StatusCode: 500}), http.StatusBadGateway},
		{"malformed", &models.MalformedResponseError{Op: "submit case", Err: errors.New("eof")}, http.StatusBadGateway},
		{"conflict", fmt.Errorf("failed to save case: %w", databases.ErrConflict), http.StatusConflict},
		{"claim held", debate.ErrSubmissionInProgress, http.StatusConflict},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, api.StatusFor(tt.err))
		})
	}
}

func TestErrorResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	api.ErrorResponse("failed to get case by ID", rr, &models.NotFoundError{Kind: "case", ID: "42"})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"response": "failed to get case by ID, case 42 not found"}`, rr.Body.String())
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	api.WriteJSON(rr, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, `{"n":1}`, rr.Body.String())
}

func TestClientID(t *testing.T) {
	assert.Empty(t, api.ClientID(context.Background()))

	ctx := api.WithUser(context.Background(), auth.NewDefaultUser("a@b.c", "u1", nil, nil))
	assert.Equal(t, "u1", api.ClientID(ctx))
	assert.Equal(t, "a@b.c", api.UserFromContext(ctx).UserName())
}

func TestValidateUser(t *testing.T) {
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(databases.NewMemoryStore())}
	ctx := context.Background()

	_, err := m.ValidateUser(ctx, nil, "no-at-sign", "pw")
	assert.Error(t, err)
	_, err = m.ValidateUser(ctx, nil, "a@b.c", "")
	assert.Error(t, err)

	first, err := m.ValidateUser(ctx, nil, " a@b.c ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", first.UserName())

	again, err := m.ValidateUser(ctx, nil, "a@b.c", "other")
	require.NoError(t, err)
	assert.Equal(t, first.ID(), again.ID())

	user, err := m.DB.FindOne(ctx, first.ID())
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", user.Email)
}

func TestMetricsMiddlewareKeepsStatus(t *testing.T) {
	h := api.MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/anything", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
}
