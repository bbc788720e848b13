// Package debate runs the two-party debate rooms.
//
// Every room transition is a single atomic update of the shared room record.
// Each update appends to the room's event log, so concurrent participants
// agree on the order of joins, messages and the verdict.
package debate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linesmerrill/ai-court-api/databases"
	"github.com/linesmerrill/ai-court-api/metrics"
	"github.com/linesmerrill/ai-court-api/models"
	"github.com/linesmerrill/ai-court-api/verdict"
)

// PlaceholderArgument stands in for the transcript of a side that never spoke
const PlaceholderArgument = "No arguments provided"

// Submission triggers
const (
	TriggerTimeout = "timeout"
	TriggerManual  = "manual"
)

const (
	// DefaultTimeout is how long a debate runs once both sides have joined
	DefaultTimeout = time.Minute
	// DefaultClaimTTL is how long a submission claim blocks other submitters
	DefaultClaimTTL = 2 * time.Minute

	maxCodeAttempts = 20
	minRoomCode     = 100000
	maxRoomCode     = 999999
)

var (
	// ErrAlreadyCompleted is returned with the stored room when a verdict already exists
	ErrAlreadyCompleted = errors.New("debate already completed")
	// ErrSubmissionInProgress is returned while another participant is waiting on the judge
	ErrSubmissionInProgress = errors.New("verdict submission already in progress")
	// ErrTimeoutAlreadyAttempted is returned when the automatic submission already
	// ran and failed; only a manual submit can finish the room after that
	ErrTimeoutAlreadyAttempted = errors.New("automatic submission already attempted")

	roomCodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// CreateRequest is the input of a new debate room
type CreateRequest struct {
	CaseTitle       string `json:"caseTitle"`
	CaseDescription string `json:"caseDescription"`
	CreatorRole     string `json:"creatorRole"`
}

// Engine applies debate transitions to the shared room records
type Engine struct {
	Rooms    databases.DebateRoomDatabase
	Notifier databases.Notifier
	Judge    verdict.Judge
	Timeout  time.Duration
	ClaimTTL time.Duration

	now     func() time.Time
	newCode func() string
}

// NewEngine creates an engine. A zero timeout or claim TTL takes the default.
func NewEngine(rooms databases.DebateRoomDatabase, notifier databases.Notifier, judge verdict.Judge, timeout, claimTTL time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if claimTTL <= 0 {
		claimTTL = DefaultClaimTTL
	}
	return &Engine{
		Rooms:    rooms,
		Notifier: notifier,
		Judge:    judge,
		Timeout:  timeout,
		ClaimTTL: claimTTL,
		now:      time.Now,
		newCode:  randomRoomCode,
	}
}

func randomRoomCode() string {
	return fmt.Sprintf("%06d", minRoomCode+rand.Intn(maxRoomCode-minRoomCode+1))
}

func millis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

func appendEvent(room *models.DebateRoom, ev models.RoomEvent) int64 {
	room.Seq++
	ev.Seq = room.Seq
	room.Events = append(room.Events, ev)
	return ev.Seq
}

// appendMessage adds a chat message and stamps the start time once both sides
// have spoken. It runs inside the room update so the start happens exactly once.
func (e *Engine) appendMessage(room *models.DebateRoom, role models.Role, clientID, text string, now time.Time) {
	at := millis(now)
	seq := appendEvent(room, models.RoomEvent{Type: models.EventMessagePosted, Role: role, ClientID: clientID, At: at})
	room.Chat = append(room.Chat, models.ChatMessage{
		ID:        uuid.New().String(),
		Seq:       seq,
		Role:      role,
		Message:   text,
		Timestamp: at,
	})

	if room.StartTime == nil && room.BothJoined() {
		room.StartTime = &at
		room.Status = models.RoomStatusInProgress
		appendEvent(room, models.RoomEvent{Type: models.EventTimerStarted, At: at})
	}
}

func (e *Engine) publish(ctx context.Context, room *models.DebateRoom) {
	if e.Notifier == nil || room == nil {
		return
	}
	b, err := json.Marshal(room)
	if err != nil {
		zap.S().Errorw("failed to encode room snapshot", "roomCode", room.RoomCode, "error", err)
		return
	}
	if err := e.Notifier.Publish(ctx, databases.RoomChannel(room.RoomCode), b); err != nil {
		zap.S().Warnw("failed to publish room snapshot", "roomCode", room.RoomCode, "error", err)
	}
}

// Create opens a new room under a fresh code. Codes are drawn from
// [100000, 999999] and redrawn until the registry accepts one.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (*models.DebateRoom, error) {
	title := strings.TrimSpace(req.CaseTitle)
	desc := strings.TrimSpace(req.CaseDescription)
	if title == "" {
		return nil, &models.ValidationError{Field: "caseTitle", Message: "case title is required"}
	}
	if desc == "" {
		return nil, &models.ValidationError{Field: "caseDescription", Message: "case description is required"}
	}
	role, err := models.ParseRole(req.CreatorRole)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := e.newCode()
		ok, err := e.Rooms.Register(ctx, models.RoomRegistryEntry{RoomCode: code, CaseTitle: title, CreatedAt: now})
		if err != nil {
			return nil, fmt.Errorf("failed to register room code: %w", err)
		}
		if !ok {
			zap.S().Debugw("room code collision, regenerating", "roomCode", code)
			continue
		}

		room := &models.DebateRoom{
			RoomCode:        code,
			CaseTitle:       title,
			CaseDescription: desc,
			CreatorRole:     role,
			Status:          models.RoomStatusWaiting,
			Chat:            []models.ChatMessage{},
			CreatedAt:       now,
		}
		appendEvent(room, models.RoomEvent{Type: models.EventCreated, Role: role, At: millis(now)})

		if err := e.Rooms.Create(ctx, room); err != nil {
			if errors.Is(err, databases.ErrRoomExists) {
				continue
			}
			return nil, fmt.Errorf("failed to create room: %w", err)
		}
		metrics.DebateRoomsCreated.Inc()
		zap.S().Infow("debate room created", "roomCode", code, "caseTitle", title)
		return room, nil
	}
	return nil, fmt.Errorf("failed to allocate a room code after %d attempts", maxCodeAttempts)
}

// Find returns the room stored under code
func (e *Engine) Find(ctx context.Context, code string) (*models.DebateRoom, error) {
	return e.Rooms.FindOne(ctx, code)
}

// Join checks that code names an open room
func (e *Engine) Join(ctx context.Context, code string) (*models.DebateRoom, error) {
	code = strings.TrimSpace(code)
	if !roomCodePattern.MatchString(code) {
		return nil, &models.ValidationError{Field: "roomCode", Message: "room code must be 6 digits"}
	}
	room, err := e.Rooms.FindOne(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.Completed() {
		return nil, &models.ValidationError{Field: "roomCode", Message: ErrAlreadyCompleted.Error()}
	}
	return room, nil
}

// Remaining is the time left before the debate auto-submits. Before the timer
// starts the full timeout remains.
func (e *Engine) Remaining(room *models.DebateRoom, now time.Time) time.Duration {
	if room.StartTime == nil {
		return e.Timeout
	}
	elapsed := time.Duration(millis(now)-*room.StartTime) * time.Millisecond
	if left := e.Timeout - elapsed; left > 0 {
		return left
	}
	return 0
}

// View returns the room as clientID sees it
func (e *Engine) View(ctx context.Context, code, clientID string) (*models.RoomView, error) {
	room, err := e.Rooms.FindOne(ctx, code)
	if err != nil {
		return nil, err
	}
	role, err := e.Rooms.Role(ctx, clientID, code)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = room.RoleOf(clientID)
	}
	return e.view(room, role), nil
}

func (e *Engine) view(room *models.DebateRoom, role models.Role) *models.RoomView {
	return &models.RoomView{
		Room:        room,
		Role:        role,
		Started:     room.StartTime != nil,
		RemainingMs: int64(e.Remaining(room, e.now()) / time.Millisecond),
	}
}

// ChooseRole binds clientID to role and announces the join in the chat. A client
// keeps its first role, and a role bound to another client cannot be taken.
func (e *Engine) ChooseRole(ctx context.Context, code, clientID string, role models.Role) (*models.DebateRoom, error) {
	if _, err := models.ParseRole(string(role)); err != nil {
		return nil, err
	}
	if clientID == "" {
		return nil, &models.ValidationError{Field: "clientId", Message: "client id is required"}
	}

	now := e.now()
	room, err := e.Rooms.Update(ctx, code, func(room *models.DebateRoom) (bool, error) {
		if room.Completed() {
			return false, &models.ValidationError{Field: "roomCode", Message: ErrAlreadyCompleted.Error()}
		}
		switch current := room.RoleOf(clientID); {
		case current == role:
			return false, nil
		case current != "":
			return false, &models.ValidationError{Field: "role", Message: fmt.Sprintf("already joined as %s", current)}
		}
		if bound := room.BoundClient(role); bound != "" {
			return false, &models.ValidationError{Field: "role", Message: fmt.Sprintf("%s is already taken", role)}
		}

		id := clientID
		if role == models.RolePlaintiff {
			room.Plaintiff = &id
		} else {
			room.Defendant = &id
		}
		appendEvent(room, models.RoomEvent{Type: models.EventRoleChosen, Role: role, ClientID: clientID, At: millis(now)})
		e.appendMessage(room, role, clientID, fmt.Sprintf("%s has joined the debate.", role.Title()), now)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if err := e.Rooms.SetRole(ctx, clientID, code, role); err != nil {
		return nil, fmt.Errorf("failed to store role: %w", err)
	}
	e.publish(ctx, room)
	return room, nil
}

// PostMessage appends a chat message from the role clientID is bound to
func (e *Engine) PostMessage(ctx context.Context, code, clientID, text string) (*models.DebateRoom, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &models.ValidationError{Field: "message", Message: "message is required"}
	}

	now := e.now()
	room, err := e.Rooms.Update(ctx, code, func(room *models.DebateRoom) (bool, error) {
		if room.Completed() {
			return false, &models.ValidationError{Field: "roomCode", Message: ErrAlreadyCompleted.Error()}
		}
		role := room.RoleOf(clientID)
		if role == "" {
			return false, &models.ValidationError{Field: "role", Message: "choose a role before posting"}
		}
		e.appendMessage(room, role, clientID, text, now)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.DebateMessages.Inc()
	e.publish(ctx, room)
	return room, nil
}

// Transcripts joins each side's messages in chat order, one blank line apart
func Transcripts(room *models.DebateRoom) (plaintiff, defendant string) {
	var p, d []string
	for _, m := range room.Chat {
		switch m.Role {
		case models.RolePlaintiff:
			p = append(p, m.Message)
		case models.RoleDefendant:
			d = append(d, m.Message)
		}
	}
	plaintiff, defendant = strings.Join(p, "\n\n"), strings.Join(d, "\n\n")
	if plaintiff == "" {
		plaintiff = PlaceholderArgument
	}
	if defendant == "" {
		defendant = PlaceholderArgument
	}
	return plaintiff, defendant
}

// Submit asks the judge for the room's verdict. Only one submitter holds the
// claim at a time; a completed room returns its stored verdict with
// ErrAlreadyCompleted and the judge is not called again.
func (e *Engine) Submit(ctx context.Context, code, clientID, trigger string) (*models.DebateRoom, error) {
	if trigger != TriggerTimeout && trigger != TriggerManual {
		return nil, &models.ValidationError{Field: "trigger", Message: fmt.Sprintf("unknown trigger %q", trigger)}
	}

	now := e.now()
	claim := &models.Submission{ClientID: clientID, Trigger: trigger, StartedAt: millis(now)}
	room, err := e.Rooms.Update(ctx, code, func(room *models.DebateRoom) (bool, error) {
		if room.Completed() {
			return false, ErrAlreadyCompleted
		}
		if e.claimed(room, now) {
			return false, ErrSubmissionInProgress
		}
		if trigger == TriggerTimeout && (room.StartTime == nil || e.Remaining(room, now) > 0) {
			return false, &models.ValidationError{Field: "trigger", Message: "debate timer has not expired"}
		}
		if trigger == TriggerTimeout && timeoutAttempted(room) {
			return false, ErrTimeoutAlreadyAttempted
		}
		room.Submission = claim
		appendEvent(room, models.RoomEvent{Type: models.EventSubmissionStarted, ClientID: clientID, At: claim.StartedAt, Note: trigger})
		return true, nil
	})
	if errors.Is(err, ErrAlreadyCompleted) {
		existing, findErr := e.Rooms.FindOne(ctx, code)
		if findErr != nil {
			return nil, findErr
		}
		return existing, ErrAlreadyCompleted
	}
	if err != nil {
		return nil, err
	}
	e.publish(ctx, room)

	zap.S().Infow("submitting debate for judgment", "roomCode", code, "trigger", trigger, "client", clientID)
	v, err := e.judge(ctx, room)
	if err != nil {
		metrics.DebateSubmissions.WithLabelValues(trigger, metrics.OutcomeError).Inc()
		zap.S().Errorw("debate judgment failed", "roomCode", code, "error", err)
		e.release(ctx, code, claim, err)
		return nil, err
	}

	done := e.now()
	room, err = e.Rooms.Update(ctx, code, func(room *models.DebateRoom) (bool, error) {
		if room.Completed() {
			return false, ErrAlreadyCompleted
		}
		room.Verdict = &v
		room.Status = models.RoomStatusCompleted
		room.PlaintiffSubmitted = true
		room.DefendantSubmitted = true
		room.Submission = nil
		appendEvent(room, models.RoomEvent{Type: models.EventVerdictRecorded, ClientID: clientID, At: millis(done), Note: v.Winner})
		return true, nil
	})
	if errors.Is(err, ErrAlreadyCompleted) {
		existing, findErr := e.Rooms.FindOne(ctx, code)
		if findErr != nil {
			return nil, findErr
		}
		return existing, ErrAlreadyCompleted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record verdict: %w", err)
	}
	metrics.DebateSubmissions.WithLabelValues(trigger, metrics.OutcomeSuccess).Inc()
	zap.S().Infow("debate verdict recorded", "roomCode", code, "winner", v.Winner)
	e.publish(ctx, room)
	return room, nil
}

func (e *Engine) judge(ctx context.Context, room *models.DebateRoom) (models.Verdict, error) {
	plaintiff, defendant := Transcripts(room)
	ruling, err := e.Judge.SubmitCase(ctx, verdict.CaseSubmission{
		Plaintiff: plaintiff,
		Defendant: defendant,
		Evidence:  room.CaseDescription,
	})
	if err != nil {
		return models.Verdict{}, fmt.Errorf("failed to get verdict: %w", err)
	}
	reasoning, err := e.Judge.GenerateReasoning(ctx, verdict.ReasoningRequest{
		Plaintiff: plaintiff,
		Defendant: defendant,
		Evidence:  room.CaseDescription,
		Verdict:   ruling.Winner,
	})
	if err != nil {
		return models.Verdict{}, fmt.Errorf("failed to generate reasoning: %w", err)
	}
	return verdict.ToVerdict(ruling, reasoning), nil
}

// release drops a failed claim so the room stays actionable
func (e *Engine) release(ctx context.Context, code string, claim *models.Submission, cause error) {
	now := e.now()
	// the judge call may have been cancelled with ctx; the claim still has to go
	ctx = context.WithoutCancel(ctx)
	room, err := e.Rooms.Update(ctx, code, func(room *models.DebateRoom) (bool, error) {
		s := room.Submission
		if s == nil || s.ClientID != claim.ClientID || s.StartedAt != claim.StartedAt {
			return false, nil
		}
		room.Submission = nil
		appendEvent(room, models.RoomEvent{Type: models.EventSubmissionFailed, ClientID: claim.ClientID, At: millis(now), Note: cause.Error()})
		return true, nil
	})
	if err != nil {
		zap.S().Errorw("failed to release submission claim", "roomCode", code, "error", err)
		return
	}
	e.publish(ctx, room)
}

// claimed reports whether a submission claim younger than the claim TTL holds the room
func (e *Engine) claimed(room *models.DebateRoom, now time.Time) bool {
	s := room.Submission
	return s != nil && time.Duration(millis(now)-s.StartedAt)*time.Millisecond < e.ClaimTTL
}

// timeoutAttempted reports whether the room's automatic submission already started once
func timeoutAttempted(room *models.DebateRoom) bool {
	for _, ev := range room.Events {
		if ev.Type == models.EventSubmissionStarted && ev.Note == TriggerTimeout {
			return true
		}
	}
	return false
}

// Expired lists the registered rooms whose timer has run out without a verdict.
// A room whose automatic submission already failed is not listed again.
func (e *Engine) Expired(ctx context.Context) ([]string, error) {
	entries, err := e.Rooms.Registry(ctx)
	if err != nil {
		return nil, err
	}
	now := e.now()
	var codes []string
	for _, entry := range entries {
		room, err := e.Rooms.FindOne(ctx, entry.RoomCode)
		if err != nil {
			var nf *models.NotFoundError
			if errors.As(err, &nf) {
				continue
			}
			return nil, err
		}
		if room.Completed() || room.StartTime == nil || e.claimed(room, now) || timeoutAttempted(room) {
			continue
		}
		if e.Remaining(room, now) == 0 {
			codes = append(codes, room.RoomCode)
		}
	}
	return codes, nil
}

// Subscribe streams the snapshots published for the room
func (e *Engine) Subscribe(ctx context.Context, code string) (<-chan []byte, func(), error) {
	if e.Notifier == nil {
		return nil, nil, errors.New("room notifications are not configured")
	}
	return e.Notifier.Subscribe(ctx, databases.RoomChannel(code))
}
