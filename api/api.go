package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linesmerrill/ai-court-api/config"
	"github.com/linesmerrill/ai-court-api/databases"
	"github.com/linesmerrill/ai-court-api/debate"
	"github.com/linesmerrill/ai-court-api/models"
)

// StatusFor maps an error to the http status it is reported with
func StatusFor(err error) int {
	var (
		ve *models.ValidationError
		nf *models.NotFoundError
		ne *models.NetworkError
		me *models.MalformedResponseError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ne), errors.As(err, &me):
		return http.StatusBadGateway
	case errors.Is(err, databases.ErrConflict), errors.Is(err, debate.ErrSubmissionInProgress):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// ErrorResponse writes err with the status it maps to
func ErrorResponse(message string, w http.ResponseWriter, err error) {
	config.ErrorStatus(message, StatusFor(err), w, err)
}

// WriteJSON marshals v and writes it with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
