package handlers_test

import (
	"net/http"

	"github.com/shaj13/go-guardian/auth"

	"github.com/linesmerrill/ai-court-api/api"
)

// asUser returns req as the authentication middleware would pass it on
func asUser(req *http.Request, id string) *http.Request {
	return req.WithContext(api.WithUser(req.Context(), auth.NewDefaultUser(id+"@court.test", id, nil, nil)))
}
