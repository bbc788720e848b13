// Package workflow runs the multi-step case submission.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/linesmerrill/ai-court-api/databases"
	"github.com/linesmerrill/ai-court-api/metrics"
	"github.com/linesmerrill/ai-court-api/models"
	"github.com/linesmerrill/ai-court-api/verdict"
)

// Stage is a step of a case submission
type Stage string

// Case submission stages. Failed is terminal for the attempt; a new attempt
// starts again from Idle.
const (
	StageIdle                Stage = "idle"
	StageSubmittingVerdict   Stage = "submitting_verdict"
	StageSubmittingReasoning Stage = "submitting_reasoning"
	StagePersisted           Stage = "persisted"
	StageNavigated           Stage = "navigated"
	StageFailed              Stage = "failed"
)

// CaseForm is the user input of a new case
type CaseForm struct {
	Title     string `json:"title"`
	Plaintiff string `json:"plaintiff"`
	Defendant string `json:"defendant"`
	Evidence  string `json:"evidence,omitempty"`
}

// Validate trims the form in place and reports the first missing field
func (f *CaseForm) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Plaintiff = strings.TrimSpace(f.Plaintiff)
	f.Defendant = strings.TrimSpace(f.Defendant)
	f.Evidence = strings.TrimSpace(f.Evidence)

	switch {
	case f.Title == "":
		return &models.ValidationError{Field: "title", Message: "case title is required"}
	case f.Plaintiff == "":
		return &models.ValidationError{Field: "plaintiff", Message: "plaintiff statement is required"}
	case f.Defendant == "":
		return &models.ValidationError{Field: "defendant", Message: "defendant statement is required"}
	}
	return nil
}

// Result is a finished submission
type Result struct {
	Case     models.Case
	Location string
}

// CaseWorkflow submits a case to the judging backend and stores the resolved case
type CaseWorkflow struct {
	Judge verdict.Judge
	DB    databases.CaseDatabase
	// Progress, when set, observes every stage change
	Progress func(Stage)
	now      func() time.Time
}

// NewCaseWorkflow creates a workflow over the given backend and store
func NewCaseWorkflow(judge verdict.Judge, db databases.CaseDatabase) *CaseWorkflow {
	return &CaseWorkflow{Judge: judge, DB: db, now: time.Now}
}

func (w *CaseWorkflow) stage(s Stage) {
	if w.Progress != nil {
		w.Progress(s)
	}
}

// Submit validates the form, asks for a ruling and its reasoning, and persists
// the resolved case. Either the case is stored with its full verdict or nothing
// is stored.
func (w *CaseWorkflow) Submit(ctx context.Context, ownerID string, form CaseForm) (*Result, error) {
	w.stage(StageIdle)
	if err := form.Validate(); err != nil {
		w.stage(StageFailed)
		return nil, err
	}

	w.stage(StageSubmittingVerdict)
	zap.S().Infow("analyzing case", "title", form.Title, "owner", ownerID)
	ruling, err := w.Judge.SubmitCase(ctx, verdict.CaseSubmission{
		Plaintiff: form.Plaintiff,
		Defendant: form.Defendant,
		Evidence:  form.Evidence,
	})
	if err != nil {
		w.stage(StageFailed)
		return nil, fmt.Errorf("failed to get verdict: %w", err)
	}

	w.stage(StageSubmittingReasoning)
	reasoning, err := w.Judge.GenerateReasoning(ctx, verdict.ReasoningRequest{
		Plaintiff: form.Plaintiff,
		Defendant: form.Defendant,
		Evidence:  form.Evidence,
		Verdict:   ruling.Winner,
	})
	if err != nil {
		w.stage(StageFailed)
		return nil, fmt.Errorf("failed to generate reasoning: %w", err)
	}

	now := time.Now
	if w.now != nil {
		now = w.now
	}
	c := models.Case{
		ID:        ulid.Make().String(),
		Title:     form.Title,
		Plaintiff: form.Plaintiff,
		Defendant: form.Defendant,
		OwnerID:   ownerID,
		CreatedAt: now().UTC(),
		State:     models.Resolved{Verdict: verdict.ToVerdict(ruling, reasoning)},
	}
	if form.Evidence != "" {
		c.Evidence = &form.Evidence
	}
	if err := w.DB.InsertOne(ctx, c); err != nil {
		w.stage(StageFailed)
		return nil, fmt.Errorf("failed to save case: %w", err)
	}
	w.stage(StagePersisted)
	metrics.CasesResolved.Inc()

	res := &Result{Case: c, Location: "/cases/" + c.ID}
	w.stage(StageNavigated)
	zap.S().Infow("case resolved", "caseId", c.ID, "winner", ruling.Winner)
	return res, nil
}
