package models

// HealthCheckResponse returns the health check response
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// JudgeHealthResponse reports whether the external judging backend answered
type JudgeHealthResponse struct {
	Healthy bool   `json:"healthy"`
	URL     string `json:"url"`
}
