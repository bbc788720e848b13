package models

import (
	"fmt"
	"time"
)

// Role is the side a debate participant argues for
type Role string

// Debate roles
const (
	RolePlaintiff Role = "plaintiff"
	RoleDefendant Role = "defendant"
)

// ParseRole validates a role string
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if r != RolePlaintiff && r != RoleDefendant {
		return "", &ValidationError{Field: "role", Message: fmt.Sprintf("must be %q or %q", RolePlaintiff, RoleDefendant)}
	}
	return r, nil
}

// Title returns the capitalised role name used in chat messages
func (r Role) Title() string {
	switch r {
	case RolePlaintiff:
		return "Plaintiff"
	case RoleDefendant:
		return "Defendant"
	}
	return string(r)
}

// RoomStatus is the lifecycle status of a debate room
type RoomStatus string

// Debate room statuses. Rooms only move forward through this list.
const (
	RoomStatusWaiting    RoomStatus = "waiting"
	RoomStatusInProgress RoomStatus = "in-progress"
	RoomStatusCompleted  RoomStatus = "completed"
)

// RoomEventType names an entry of the room event log
type RoomEventType string

// Room event types
const (
	EventCreated           RoomEventType = "created"
	EventRoleChosen        RoomEventType = "role_chosen"
	EventMessagePosted     RoomEventType = "message_posted"
	EventTimerStarted      RoomEventType = "timer_started"
	EventSubmissionStarted RoomEventType = "submission_started"
	EventSubmissionFailed  RoomEventType = "submission_failed"
	EventVerdictRecorded   RoomEventType = "verdict_recorded"
)

// ChatMessage is a single debate chat entry
type ChatMessage struct {
	ID        string `json:"id"`
	Seq       int64  `json:"seq"`
	Role      Role   `json:"role"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // epoch millis
}

// RoomEvent is one entry of the append-only room log
type RoomEvent struct {
	Seq      int64         `json:"seq"`
	Type     RoomEventType `json:"type"`
	Role     Role          `json:"role,omitempty"`
	ClientID string        `json:"clientId,omitempty"`
	At       int64         `json:"at"` // epoch millis
	Note     string        `json:"note,omitempty"`
}

// Submission is the claim held by the client currently asking for a verdict
type Submission struct {
	ClientID  string `json:"clientId"`
	Trigger   string `json:"trigger"`
	StartedAt int64  `json:"startedAt"` // epoch millis
}

// DebateRoom holds the structure stored under shared_debate_<roomCode>
type DebateRoom struct {
	RoomCode           string        `json:"roomCode"`
	CaseTitle          string        `json:"caseTitle"`
	CaseDescription    string        `json:"caseDescription"`
	CreatorRole        Role          `json:"creatorRole"`
	Status             RoomStatus    `json:"status"`
	Plaintiff          *string       `json:"plaintiff"` // client bound to the role
	Defendant          *string       `json:"defendant"`
	PlaintiffSubmitted bool          `json:"plaintiffSubmitted"`
	DefendantSubmitted bool          `json:"defendantSubmitted"`
	Chat               []ChatMessage `json:"chat"`
	StartTime          *int64        `json:"startTime,omitempty"` // epoch millis
	Verdict            *Verdict      `json:"verdict,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	Seq                int64         `json:"seq"`
	Events             []RoomEvent   `json:"events"`
	Submission         *Submission   `json:"submission,omitempty"`
}

// Completed reports whether the room already has its verdict
func (r *DebateRoom) Completed() bool {
	return r.Status == RoomStatusCompleted
}

// HasSpoken reports whether the chat holds at least one message from role
func (r *DebateRoom) HasSpoken(role Role) bool {
	for _, m := range r.Chat {
		if m.Role == role {
			return true
		}
	}
	return false
}

// BothJoined reports whether both sides have posted in the chat
func (r *DebateRoom) BothJoined() bool {
	return r.HasSpoken(RolePlaintiff) && r.HasSpoken(RoleDefendant)
}

// BoundClient returns the client id bound to role, or "" when the role is free
func (r *DebateRoom) BoundClient(role Role) string {
	var p *string
	switch role {
	case RolePlaintiff:
		p = r.Plaintiff
	case RoleDefendant:
		p = r.Defendant
	}
	if p == nil {
		return ""
	}
	return *p
}

// RoleOf returns the role bound to clientID, or "" when the client has none
func (r *DebateRoom) RoleOf(clientID string) Role {
	switch clientID {
	case "":
		return ""
	case r.BoundClient(RolePlaintiff):
		return RolePlaintiff
	case r.BoundClient(RoleDefendant):
		return RoleDefendant
	}
	return ""
}

// RoomRegistryEntry is one entry of the debateRooms registry
type RoomRegistryEntry struct {
	RoomCode  string    `json:"roomCode"`
	CaseTitle string    `json:"caseTitle"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoomView is what a participant sees when it loads a room
type RoomView struct {
	Room        *DebateRoom `json:"room"`
	Role        Role        `json:"role,omitempty"`
	Started     bool        `json:"started"`
	RemainingMs int64       `json:"remainingMs"`
}
