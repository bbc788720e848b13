package models

// Verdict holds the judging service ruling embedded in cases and debate rooms
type Verdict struct {
	Winner         string   `json:"winner"`
	Reasoning      string   `json:"reasoning"`
	Confidence     string   `json:"confidence"`
	Model          string   `json:"model"`
	PlaintiffScore *float64 `json:"plaintiff_score,omitempty"`
	DefendantScore *float64 `json:"defendant_score,omitempty"`
	ReasoningModel string   `json:"reasoning_model,omitempty"`
}

// GeneratedVerdict is the shape returned by the in-process AI verdict route
type GeneratedVerdict struct {
	Decision  string `json:"decision"`
	Reasoning string `json:"reasoning"`
}
