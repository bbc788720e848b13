package debate

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/ai-court-api/models"
)

const (
	// DefaultPollInterval is how often a participant re-reads its room
	DefaultPollInterval = 2 * time.Second
	tickInterval        = time.Second
)

// Participant is one client's live view of a room. It re-reads the room on a
// poll interval and on every published change, counts the timer down locally
// and submits the debate once when the timer runs out.
type Participant struct {
	Engine       *Engine
	RoomCode     string
	ClientID     string
	PollInterval time.Duration
	// OnChange, when set, receives the view after every refresh and tick
	OnChange func(models.RoomView)

	mu            sync.Mutex
	view          models.RoomView
	inFlight      bool
	autoSubmitted bool
}

// NewParticipant creates the view of clientID on the room
func NewParticipant(engine *Engine, roomCode, clientID string) *Participant {
	return &Participant{
		Engine:       engine,
		RoomCode:     roomCode,
		ClientID:     clientID,
		PollInterval: DefaultPollInterval,
	}
}

// View returns the last known view
func (p *Participant) View() models.RoomView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

func (p *Participant) set(v *models.RoomView) models.RoomView {
	p.mu.Lock()
	p.view = *v
	cur := p.view
	p.mu.Unlock()
	if p.OnChange != nil {
		p.OnChange(cur)
	}
	return cur
}

// Refresh re-reads the room from the store
func (p *Participant) Refresh(ctx context.Context) (models.RoomView, error) {
	v, err := p.Engine.View(ctx, p.RoomCode, p.ClientID)
	if err != nil {
		return p.View(), err
	}
	return p.set(v), nil
}

// Tick recomputes the remaining time. It does nothing while this participant
// waits on a verdict or once the room is completed. When the timer reaches zero
// the debate is submitted, once per participant.
func (p *Participant) Tick(ctx context.Context, now time.Time) (models.RoomView, error) {
	p.mu.Lock()
	room := p.view.Room
	if room == nil || p.inFlight || room.Completed() || room.StartTime == nil {
		v := p.view
		p.mu.Unlock()
		return v, nil
	}
	p.view.RemainingMs = int64(p.Engine.Remaining(room, now) / time.Millisecond)
	expired := p.view.RemainingMs == 0 && !p.autoSubmitted
	if expired {
		p.autoSubmitted = true
	}
	v := p.view
	p.mu.Unlock()

	if p.OnChange != nil {
		p.OnChange(v)
	}
	if !expired {
		return v, nil
	}

	zap.S().Infow("debate timer expired, submitting", "roomCode", p.RoomCode, "client", p.ClientID)
	return p.submit(ctx, TriggerTimeout)
}

// ChooseRole binds this participant to role
func (p *Participant) ChooseRole(ctx context.Context, role models.Role) (models.RoomView, error) {
	if _, err := p.Engine.ChooseRole(ctx, p.RoomCode, p.ClientID, role); err != nil {
		return p.View(), err
	}
	return p.Refresh(ctx)
}

// Send posts a chat message
func (p *Participant) Send(ctx context.Context, text string) (models.RoomView, error) {
	if _, err := p.Engine.PostMessage(ctx, p.RoomCode, p.ClientID, text); err != nil {
		return p.View(), err
	}
	return p.Refresh(ctx)
}

// SubmitNow forces the verdict; confirm must be true
func (p *Participant) SubmitNow(ctx context.Context, confirm bool) (models.RoomView, error) {
	if !confirm {
		return p.View(), &models.ValidationError{Field: "confirm", Message: "submitting ends the debate and must be confirmed"}
	}
	return p.submit(ctx, TriggerManual)
}

func (p *Participant) submit(ctx context.Context, trigger string) (models.RoomView, error) {
	p.mu.Lock()
	if p.inFlight {
		v := p.view
		p.mu.Unlock()
		return v, ErrSubmissionInProgress
	}
	p.inFlight = true
	p.mu.Unlock()

	_, err := p.Engine.Submit(ctx, p.RoomCode, p.ClientID, trigger)

	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()

	v, refreshErr := p.Refresh(ctx)
	switch {
	case err == nil, errors.Is(err, ErrAlreadyCompleted):
		return v, refreshErr
	case trigger == TriggerTimeout && (errors.Is(err, ErrSubmissionInProgress) || errors.Is(err, ErrTimeoutAlreadyAttempted)):
		// another submitter holds or spent the automatic submission; its outcome arrives with a later refresh
		return v, nil
	}
	return v, err
}

// Run keeps the view current until ctx is done. Failures are logged and the
// loop carries on; the room stays actionable.
func (p *Participant) Run(ctx context.Context) error {
	if _, err := p.Refresh(ctx); err != nil {
		return err
	}

	updates, cancel, err := p.Engine.Subscribe(ctx, p.RoomCode)
	if err != nil {
		zap.S().Warnw("room notifications unavailable, polling only", "roomCode", p.RoomCode, "error", err)
		updates, cancel = nil, func() {}
	}
	defer cancel()

	interval := p.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	poll := time.NewTicker(interval)
	defer poll.Stop()
	tick := time.NewTicker(tickInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			p.logErr(p.Refresh(ctx))
		case <-poll.C:
			p.logErr(p.Refresh(ctx))
		case now := <-tick.C:
			p.logErr(p.Tick(ctx, now))
		}
	}
}

func (p *Participant) logErr(_ models.RoomView, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		zap.S().Warnw("debate participant update failed", "roomCode", p.RoomCode, "client", p.ClientID, "error", err)
	}
}
