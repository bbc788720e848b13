package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/ai-court-api/debate"
)

// sweepTimeout bounds one sweep, verdict calls included
const sweepTimeout = 2 * time.Minute

// Scheduler runs the server side debate timer
type Scheduler struct {
	cron       *cron.Cron
	Engine     *debate.Engine
	Spec       string
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(engine *debate.Engine, spec string) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Engine:     engine,
		Spec:       spec,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.Spec, s.sweepExpiredDebates); err != nil {
		zap.S().Errorw("failed to register debate sweep job", "spec", s.Spec, "error", err)
		return err
	}

	s.cron.Start()
	zap.S().Infow("Debate scheduler started", "spec", s.Spec, "instance", s.instanceID)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Debate scheduler stopped")
}

func (s *Scheduler) sweepExpiredDebates() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	s.Sweep(ctx)
}

// Sweep submits every debate whose timer ran out and returns how many verdicts
// it recorded. Rooms claimed by a participant are left alone.
func (s *Scheduler) Sweep(ctx context.Context) int {
	codes, err := s.Engine.Expired(ctx)
	if err != nil {
		zap.S().Errorw("failed to list expired debates", "error", err)
		return 0
	}

	submitted := 0
	for _, code := range codes {
		_, err := s.Engine.Submit(ctx, code, "scheduler:"+s.instanceID, debate.TriggerTimeout)
		switch {
		case err == nil:
			submitted++
		case errors.Is(err, debate.ErrAlreadyCompleted), errors.Is(err, debate.ErrSubmissionInProgress), errors.Is(err, debate.ErrTimeoutAlreadyAttempted):
			zap.S().Debugw("debate already handled", "roomCode", code, "error", err)
		default:
			zap.S().Warnw("timed out debate could not be submitted", "roomCode", code, "error", err)
		}
	}
	if len(codes) > 0 {
		zap.S().Infow("Debate sweep complete", "expired", len(codes), "submitted", submitted)
	}
	return submitted
}
