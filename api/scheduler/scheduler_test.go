package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/ai-court-api/api/scheduler"
	"github.com/linesmerrill/ai-court-api/databases"
	"github.com/linesmerrill/ai-court-api/debate"
	"github.com/linesmerrill/ai-court-api/models"
	"github.com/linesmerrill/ai-court-api/verdict"
	"github.com/linesmerrill/ai-court-api/verdict/mocks"
)

const shortTimeout = 50 * time.Millisecond

func startedRoom(t *testing.T, e *debate.Engine) string {
	t.Helper()
	ctx := context.Background()
	room, err := e.Create(ctx, debate.CreateRequest{CaseTitle: "Noise complaint", CaseDescription: "Loud music after midnight", CreatorRole: "plaintiff"})
	require.NoError(t, err)
	_, err = e.ChooseRole(ctx, room.RoomCode, "client-a", models.RolePlaintiff)
	require.NoError(t, err)
	_, err = e.ChooseRole(ctx, room.RoomCode, "client-b", models.RoleDefendant)
	require.NoError(t, err)
	return room.RoomCode
}

func newEngine(judge verdict.Judge) *debate.Engine {
	return debate.NewEngine(databases.NewDebateRoomDatabase(databases.NewMemoryStore()), databases.NewMemoryNotifier(), judge, shortTimeout, time.Minute)
}

func TestSweepSubmitsExpiredDebates(t *testing.T) {
	judge := &mocks.Judge{}
	judge.On("SubmitCase", mock.Anything, mock.Anything).Return(&verdict.Response{Winner: "Defendant", Confidence: "Medium"}, nil).Once()
	judge.On("GenerateReasoning", mock.Anything, mock.Anything).Return(&verdict.ReasoningResponse{Reasoning: "No damage shown."}, nil).Once()

	e := newEngine(judge)
	code := startedRoom(t, e)
	s := scheduler.NewScheduler(e, "@every 1s")

	assert.Equal(t, 0, s.Sweep(context.Background()))

	time.Sleep(2 * shortTimeout)
	assert.Equal(t, 1, s.Sweep(context.Background()))
	assert.Equal(t, 0, s.Sweep(context.Background()))

	room, err := e.Find(context.Background(), code)
	require.NoError(t, err)
	assert.True(t, room.Completed())
	require.NotNil(t, room.Verdict)
	assert.Equal(t, "Defendant", room.Verdict.Winner)
	judge.AssertExpectations(t)
}

func TestSweepSkipsRoomsThatNeverStarted(t *testing.T) {
	judge := &mocks.Judge{}
	e := newEngine(judge)
	_, err := e.Create(context.Background(), debate.CreateRequest{CaseTitle: "Empty", CaseDescription: "Nobody joined", CreatorRole: "defendant"})
	require.NoError(t, err)

	time.Sleep(2 * shortTimeout)
	s := scheduler.NewScheduler(e, "@every 1s")
	assert.Equal(t, 0, s.Sweep(context.Background()))
	judge.AssertNotCalled(t, "SubmitCase", mock.Anything, mock.Anything)
}

func TestSweepLeavesFailedRoomActionable(t *testing.T) {
	judge := &mocks.Judge{}
	judge.On("SubmitCase", mock.Anything, mock.Anything).Return(nil, &models.NetworkError{Op: "submit case", Err: errors.New("connection refused")})

	e := newEngine(judge)
	code := startedRoom(t, e)
	time.Sleep(2 * shortTimeout)

	s := scheduler.NewScheduler(e, "@every 1s")
	assert.Equal(t, 0, s.Sweep(context.Background()))

	room, err := e.Find(context.Background(), code)
	require.NoError(t, err)
	assert.False(t, room.Completed())
	assert.Nil(t, room.Submission)

	// the automatic submission is not retried; a participant can still submit manually
	codes, err := e.Expired(context.Background())
	require.NoError(t, err)
	assert.Empty(t, codes)
	assert.Equal(t, 0, s.Sweep(context.Background()))
	assert.Equal(t, 0, s.Sweep(context.Background()))
	judge.AssertNumberOfCalls(t, "SubmitCase", 1)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := scheduler.NewScheduler(newEngine(&mocks.Judge{}), "not a cron spec")
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := scheduler.NewScheduler(newEngine(&mocks.Judge{}), "@every 1h")
	require.NoError(t, s.Start())
	s.Stop()
}
