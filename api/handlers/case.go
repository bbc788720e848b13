package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/ai-court-api/api"
	"github.com/linesmerrill/ai-court-api/config"
	"github.com/linesmerrill/ai-court-api/databases"
	"github.com/linesmerrill/ai-court-api/models"
	"github.com/linesmerrill/ai-court-api/workflow"
)

// Case exported for testing purposes
type Case struct {
	DB       databases.CaseDatabase
	Workflow *workflow.CaseWorkflow
}

// CreateCaseHandler judges a new case and stores it
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var form workflow.CaseForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	// no query timeout: the judging backend is only bounded by the request
	res, err := c.Workflow.Submit(r.Context(), api.ClientID(r.Context()), form)
	if err != nil {
		api.ErrorResponse("failed to submit case", w, err)
		return
	}

	w.Header().Set("Location", res.Location)
	api.WriteJSON(w, http.StatusCreated, res.Case)
}

// CasesHandler returns the cases of the logged in user, newest first
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.DB.FindByOwner(ctx, api.ClientID(r.Context()))
	if err != nil {
		api.ErrorResponse("failed to get cases", w, err)
		return
	}
	if len(cases) == 0 {
		cases = []models.Case{}
	}
	api.WriteJSON(w, http.StatusOK, cases)
}

// CaseByIDHandler returns a case by ID
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	zap.S().Debugf("case_id: %v", caseID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cs, err := c.DB.FindOne(ctx, caseID)
	if err != nil {
		api.ErrorResponse("failed to get case by ID", w, err)
		return
	}
	if cs.OwnerID != "" && cs.OwnerID != api.ClientID(r.Context()) {
		api.ErrorResponse("failed to get case by ID", w, &models.NotFoundError{Kind: "case", ID: caseID})
		return
	}
	api.WriteJSON(w, http.StatusOK, cs)
}
