package handlers

import (
	"net/http"

	"github.com/linesmerrill/ai-court-api/api"
	"github.com/linesmerrill/ai-court-api/databases"
	"github.com/linesmerrill/ai-court-api/models"
)

// recentCaseCount is how many cases the dashboard lists
const recentCaseCount = 5

// Account exported for testing purposes
type Account struct {
	UDB databases.UserDatabase
	CDB databases.CaseDatabase
}

// AccountHandler returns the logged in user with its case statistics
func (a Account) AccountHandler(w http.ResponseWriter, r *http.Request) {
	clientID := api.ClientID(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := a.UDB.FindOne(ctx, clientID)
	if err != nil {
		api.ErrorResponse("failed to get user", w, err)
		return
	}
	stats, err := a.CDB.Stats(ctx, clientID)
	if err != nil {
		api.ErrorResponse("failed to get case stats", w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, models.AccountResponse{User: *user, Stats: stats})
}

// DashboardHandler returns the case statistics and the most recent cases
func (a Account) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	clientID := api.ClientID(r.Context())

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := a.CDB.FindByOwner(ctx, clientID)
	if err != nil {
		api.ErrorResponse("failed to get cases", w, err)
		return
	}
	stats, err := a.CDB.Stats(ctx, clientID)
	if err != nil {
		api.ErrorResponse("failed to get case stats", w, err)
		return
	}
	if len(cases) > recentCaseCount {
		cases = cases[:recentCaseCount]
	}
	api.WriteJSON(w, http.StatusOK, models.DashboardResponse{Stats: stats, RecentCases: cases})
}
