package models

// User holds the demo session user. It is created at login and never checked
// against a credential store.
type User struct {
	Email string `json:"email"`
	ID    string `json:"id"`
}

// AccountResponse is returned by the account page endpoint
type AccountResponse struct {
	User  User      `json:"user"`
	Stats CaseStats `json:"stats"`
}

// DashboardResponse is returned by the dashboard endpoint
type DashboardResponse struct {
	Stats       CaseStats `json:"stats"`
	RecentCases []Case    `json:"recentCases"`
}
