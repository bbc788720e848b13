package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Case statuses as stored in the cases collection. "completed" is accepted as a
// synonym of "resolved" for records written by older clients.
const (
	CaseStatusPending   = "pending"
	CaseStatusResolved  = "resolved"
	CaseStatusCompleted = "completed"
)

// CaseState is either Pending or Resolved. The stored status and verdict fields
// are derived from it, so a resolved case without a verdict cannot be built.
type CaseState interface {
	Status() string
	isCaseState()
}

// Pending is a case that has not been judged yet
type Pending struct{}

// Status returns the stored status string
func (Pending) Status() string { return CaseStatusPending }
func (Pending) isCaseState()   {}

// Resolved is a judged case carrying its frozen verdict
type Resolved struct {
	Verdict Verdict
	// Label keeps the exact status string the record was stored with
	Label string
}

// Status returns the stored status string
func (r Resolved) Status() string {
	if r.Label == "" {
		return CaseStatusResolved
	}
	return r.Label
}
func (Resolved) isCaseState() {}

// Case holds the structure for a single record in the cases collection
type Case struct {
	ID        string
	Title     string
	Plaintiff string
	Defendant string
	// Evidence is nil when the record has no evidence field; an empty string is kept
	Evidence  *string
	OwnerID   string
	CreatedAt time.Time
	State     CaseState
}

// Verdict returns the case verdict and true when the case is resolved
func (c Case) Verdict() (Verdict, bool) {
	if r, ok := c.State.(Resolved); ok {
		return r.Verdict, true
	}
	return Verdict{}, false
}

// IsResolved reports whether the case has a verdict
func (c Case) IsResolved() bool {
	_, ok := c.Verdict()
	return ok
}

type caseRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Plaintiff string    `json:"plaintiff"`
	Defendant string    `json:"defendant"`
	Evidence  *string   `json:"evidence,omitempty"`
	Verdict   *Verdict  `json:"verdict,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	OwnerID   string    `json:"ownerId,omitempty"`
}

// MarshalJSON writes the flat record shape used by the cases collection
func (c Case) MarshalJSON() ([]byte, error) {
	rec := caseRecord{
		ID:        c.ID,
		Title:     c.Title,
		Plaintiff: c.Plaintiff,
		Defendant: c.Defendant,
		Evidence:  c.Evidence,
		CreatedAt: c.CreatedAt,
		OwnerID:   c.OwnerID,
	}
	switch s := c.State.(type) {
	case nil, Pending:
		rec.Status = CaseStatusPending
	case Resolved:
		v := s.Verdict
		rec.Verdict = &v
		rec.Status = s.Status()
	default:
		return nil, fmt.Errorf("unknown case state %T", c.State)
	}
	return json.Marshal(rec)
}

// UnmarshalJSON reads the flat record shape and rebuilds the case state
func (c *Case) UnmarshalJSON(b []byte) error {
	var rec caseRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}

	*c = Case{
		ID:        rec.ID,
		Title:     rec.Title,
		Plaintiff: rec.Plaintiff,
		Defendant: rec.Defendant,
		Evidence:  rec.Evidence,
		OwnerID:   rec.OwnerID,
		CreatedAt: rec.CreatedAt,
	}

	switch rec.Status {
	case CaseStatusPending, "":
		if rec.Verdict != nil {
			return errors.New("pending case must not carry a verdict")
		}
		c.State = Pending{}
	case CaseStatusResolved, CaseStatusCompleted:
		if rec.Verdict == nil {
			return fmt.Errorf("case %s is %s but has no verdict", rec.ID, rec.Status)
		}
		c.State = Resolved{Verdict: *rec.Verdict, Label: rec.Status}
	default:
		return fmt.Errorf("unknown case status %q", rec.Status)
	}
	return nil
}

// CaseStats holds the counters shown on the dashboard and account pages
type CaseStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}
