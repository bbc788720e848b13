package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aicourt_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aicourt_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30},
		},
		[]string{"method", "path"},
	)

	// Judging backend calls
	VerdictRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aicourt_verdict_requests_total",
			Help: "Total calls to the judging backend",
		},
		[]string{"op", "outcome"}, // op: verdict, reasoning, health, generate
	)

	// Business metrics
	DebateRoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aicourt_debate_rooms_created_total",
			Help: "Total debate rooms created",
		},
	)

	DebateMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aicourt_debate_messages_total",
			Help: "Total debate chat messages posted",
		},
	)

	DebateSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aicourt_debate_submissions_total",
			Help: "Total debate verdict submissions",
		},
		[]string{"trigger", "outcome"},
	)

	CasesResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aicourt_cases_resolved_total",
			Help: "Total cases resolved through the case workflow",
		},
	)
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)
