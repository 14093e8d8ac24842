package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neonarcade/connect-four/backend/internal/domain"
	"github.com/neonarcade/connect-four/backend/internal/service/bot"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []domain.ServerMessage
}

func (n *recordingNotifier) Broadcast(gameID string, message domain.ServerMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]string, 0, len(n.messages))
	for _, m := range n.messages {
		types = append(types, m.Type)
	}
	return types
}

func (n *recordingNotifier) last() domain.ServerMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.messages[len(n.messages)-1]
}

type memoryRepo struct {
	mu        sync.Mutex
	snapshots map[string]domain.Snapshot
	saves     int
	saveErr   error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{snapshots: make(map[string]domain.Snapshot)}
}

func (r *memoryRepo) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.snapshots[snap.GameID] = snap
	return nil
}

func (r *memoryRepo) GetSnapshot(ctx context.Context, gameID string) (*domain.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.snapshots[gameID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (r *memoryRepo) DeleteSnapshot(ctx context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snapshots, gameID)
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var firstColumn = bot.WithRandom(func(int) int { return 0 })

func newTestManager(t *testing.T, opts ...Option) (*SessionManager, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	base := []Option{
		WithNotifier(notifier),
		WithThinkingDelays(nil),
		WithEngine(bot.NewEngine(firstColumn)),
	}
	sm := NewSessionManager(append(base, opts...)...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		sm.Shutdown(ctx)
	})
	return sm, notifier
}

func playAll(t *testing.T, sm *SessionManager, gameID string, columns ...int) domain.Snapshot {
	t.Helper()
	var snap domain.Snapshot
	var err error
	for _, col := range columns {
		snap, err = sm.HandleMove(context.Background(), gameID, col)
		require.NoError(t, err)
	}
	return snap
}

func TestCreateSession(t *testing.T) {
	sm, _ := newTestManager(t)
	ctx := context.Background()

	ai, err := sm.CreateSession(ctx, domain.ModeAI, domain.DifficultyHard)
	require.NoError(t, err)
	assert.NotEmpty(t, ai.GameID)
	assert.Equal(t, domain.Player2, ai.BotPlayer)
	assert.Equal(t, domain.DifficultyHard, ai.Difficulty)
	assert.Equal(t, domain.NewGameState(), ai.State)

	pvp, err := sm.CreateSession(ctx, domain.ModePvP, "")
	require.NoError(t, err)
	assert.Equal(t, domain.Empty, pvp.BotPlayer)
	assert.Equal(t, domain.DifficultyMedium, pvp.Difficulty)
	assert.NotEqual(t, ai.GameID, pvp.GameID)
	assert.Equal(t, 2, sm.ActiveSessions())

	_, err = sm.CreateSession(ctx, "online", domain.DifficultyEasy)
	assert.ErrorIs(t, err, domain.ErrInvalidMode)

	_, err = sm.CreateSession(ctx, domain.ModeAI, "impossible")
	assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)
}

func TestHandleMovePvP(t *testing.T) {
	sm, notifier := newTestManager(t)
	ctx := context.Background()
	snap, err := sm.CreateSession(ctx, domain.ModePvP, "")
	require.NoError(t, err)

	snap = playAll(t, sm, snap.GameID, 3, 3)
	assert.Equal(t, domain.Player1, snap.State.Board[5][3])
	assert.Equal(t, domain.Player2, snap.State.Board[4][3])
	assert.Equal(t, domain.Player1, snap.State.CurrentPlayer)
	assert.Equal(t, []string{domain.MsgMoveMade, domain.MsgMoveMade}, notifier.types())

	last := notifier.last()
	assert.Equal(t, snap.GameID, last.GameID)
	assert.Equal(t, domain.Player2, last.Player)
	assert.Equal(t, 4, *last.Row)

	_, err = sm.HandleMove(ctx, snap.GameID, 7)
	assert.ErrorIs(t, err, domain.ErrColumnOutOfRange)

	_, err = sm.HandleMove(ctx, "missing", 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHandleMoveReportsGameOver(t *testing.T) {
	sm, notifier := newTestManager(t)
	ctx := context.Background()
	snap, err := sm.CreateSession(ctx, domain.ModePvP, "")
	require.NoError(t, err)

	snap = playAll(t, sm, snap.GameID, 0, 6, 1, 6, 2, 6, 3)
	assert.Equal(t, domain.StatusWon, snap.State.Status)
	assert.Equal(t, domain.Player1, snap.State.Winner)

	over := notifier.last()
	assert.Equal(t, domain.MsgGameOver, over.Type)
	assert.Equal(t, "connect_four", over.Message)
	assert.Equal(t, domain.Player1, over.Winner)

	_, err = sm.HandleMove(ctx, snap.GameID, 4)
	assert.ErrorIs(t, err, domain.ErrGameOver)
}

func TestAIMovesAfterHuman(t *testing.T) {
	sm, notifier := newTestManager(t)
	ctx := context.Background()
	snap, err := sm.CreateSession(ctx, domain.ModeAI, domain.DifficultyEasy)
	require.NoError(t, err)

	_, err = sm.HandleMove(ctx, snap.GameID, 3)
	require.NoError(t, err)
	sm.Wait()

	got, err := sm.GetSession(ctx, snap.GameID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.State.MoveCount)
	assert.Equal(t, domain.Player2, got.State.Board[5][0])
	assert.Equal(t, domain.Player1, got.State.CurrentPlayer)
	assert.Equal(t, []string{domain.MsgMoveMade, domain.MsgAIThinking, domain.MsgMoveMade}, notifier.types())
}

func TestAIBlocksOnMedium(t *testing.T) {
	sm, _ := newTestManager(t)
	ctx := context.Background()
	snap, err := sm.CreateSession(ctx, domain.ModeAI, domain.DifficultyMedium)
	require.NoError(t, err)

	// random picks column 0 until there is something to block
	for _, col := range []int{4, 5} {
		_, err = sm.HandleMove(ctx, snap.GameID, col)
		require.NoError(t, err)
		sm.Wait()
	}
	_, err = sm.HandleMove(ctx, snap.GameID, 6)
	require.NoError(t, err)
	sm.Wait()

	got, err := sm.GetSession(ctx, snap.GameID)
	require.NoError(t, err)
	assert.Equal(t, domain.Player2, got.State.Board[5][3])
}

func TestHumanCannotMoveWhileAIThinks(t *testing.T) {
	sm, _ := newTestManager(t, WithThinkingDelays(map[domain.Difficulty]time.Duration{
		domain.DifficultyEasy: time.Hour,
	}))
	ctx := context.Background()
	snap, err := sm.CreateSession(ctx, domain.ModeAI, domain.DifficultyEasy)
	require.NoError(t, err)

	_, err = sm.HandleMove(ctx, snap.GameID, 3)
	require.NoError(t, err)

	got, err := sm.HandleMove(ctx, snap.GameID, 4)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	assert.Equal(t, 1, got.State.MoveCount)
}

func TestResetCancelsPendingAIMove(t *testing.T) {
	sm, notifier := newTestManager(t, WithThinkingDelays(map[domain.Difficulty]time.Duration{
		domain.DifficultyHard: time.Hour,
	}))
	ctx := context.Background()
	snap, err := sm.CreateSession(ctx, domain.ModeAI, domain.DifficultyHard)
	require.NoError(t, err)

	_, err = sm.HandleMove(ctx, snap.GameID, 3)
	require.NoError(t, err)

	reset, err := sm.Reset(ctx, snap.GameID)
	require.NoError(t, err)
	assert.Equal(t, domain.NewGameState(), reset.State)
	assert.Equal(t, domain.DifficultyHard, reset.Difficulty)

	done := make(chan struct{})
	go func() {
		sm.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pending AI move was not cancelled")
	}

	got, err := sm.GetSession(ctx, snap.GameID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.State.MoveCount)
	assert.Equal(t, []string{domain.MsgMoveMade, domain.MsgAIThinking, domain.MsgGameReset}, notifier.types())
}

func TestSetDifficulty(t *testing.T) {
	sm, notifier := newTestManager(t)
	ctx := context.Background()
	snap, err := sm.CreateSession(ctx, domain.ModeAI, domain.DifficultyEasy)
	require.NoError(t, err)

	got, err := sm.SetDifficulty(ctx, snap.GameID, domain.DifficultyHard)
	require.NoError(t, err)
	assert.Equal(t, domain.DifficultyHard, got.Difficulty)
	assert.Equal(t, domain.MsgDifficulty, notifier.last().Type)

	_, err = sm.SetDifficulty(ctx, snap.GameID, "nightmare")
	assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)

	_, err = sm.SetDifficulty(ctx, "missing", domain.DifficultyEasy)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHint(t *testing.T) {
	sm, _ := newTestManager(t)
	ctx := context.Background()
	snap, err := sm.CreateSession(ctx, domain.ModePvP, "")
	require.NoError(t, err)

	before := playAll(t, sm, snap.GameID, 0, 6, 1, 6, 2, 5)

	col, err := sm.Hint(ctx, snap.GameID, domain.DifficultyMedium)
	require.NoError(t, err)
	assert.Equal(t, 3, col)

	after, err := sm.GetSession(ctx, snap.GameID)
	require.NoError(t, err)
	assert.Equal(t, before.State, after.State)

	playAll(t, sm, snap.GameID, 3)
	_, err = sm.Hint(ctx, snap.GameID, domain.DifficultyHard)
	assert.ErrorIs(t, err, domain.ErrGameOver)
}

func TestSnapshotsArePersistedAndRestored(t *testing.T) {
	repo := newMemoryRepo()
	sm, _ := newTestManager(t, WithRepository(repo))
	ctx := context.Background()

	snap, err := sm.CreateSession(ctx, domain.ModePvP, "")
	require.NoError(t, err)
	snap = playAll(t, sm, snap.GameID, 3, 4)

	stored, err := repo.GetSnapshot(ctx, snap.GameID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, snap.State, stored.State)

	// a fresh manager finds the game through the repository
	restarted, _ := newTestManager(t, WithRepository(repo))
	got, err := restarted.GetSession(ctx, snap.GameID)
	require.NoError(t, err)
	assert.Equal(t, snap.State, got.State)
	assert.Equal(t, 1, restarted.ActiveSessions())

	got = playAll(t, restarted, snap.GameID, 3)
	assert.Equal(t, 3, got.State.MoveCount)
}

func TestRestoredGameResumesAITurn(t *testing.T) {
	repo := newMemoryRepo()
	state := domain.ApplyMove(domain.NewGameState(), 3)
	require.NoError(t, repo.SaveSnapshot(context.Background(), domain.Snapshot{
		GameID:     "resume-me",
		Mode:       domain.ModeAI,
		Difficulty: domain.DifficultyEasy,
		BotPlayer:  domain.Player2,
		State:      state,
	}))

	sm, _ := newTestManager(t, WithRepository(repo))
	_, err := sm.GetSession(context.Background(), "resume-me")
	require.NoError(t, err)
	sm.Wait()

	got, err := sm.GetSession(context.Background(), "resume-me")
	require.NoError(t, err)
	assert.Equal(t, 2, got.State.MoveCount)
	assert.Equal(t, domain.Player1, got.State.CurrentPlayer)
}

func TestSaveFailureDoesNotBlockTheGame(t *testing.T) {
	repo := newMemoryRepo()
	repo.saveErr = errors.New("disk full")
	sm, _ := newTestManager(t, WithRepository(repo))
	ctx := context.Background()

	snap, err := sm.CreateSession(ctx, domain.ModePvP, "")
	require.NoError(t, err)

	got, err := sm.HandleMove(ctx, snap.GameID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, got.State.MoveCount)
	assert.Equal(t, 2, repo.saves)
}

func TestRemoveSession(t *testing.T) {
	repo := newMemoryRepo()
	sm, _ := newTestManager(t, WithRepository(repo))
	ctx := context.Background()

	snap, err := sm.CreateSession(ctx, domain.ModePvP, "")
	require.NoError(t, err)

	require.NoError(t, sm.RemoveSession(ctx, snap.GameID))
	assert.Equal(t, 0, sm.ActiveSessions())

	stored, err := repo.GetSnapshot(ctx, snap.GameID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	assert.ErrorIs(t, sm.RemoveSession(ctx, snap.GameID), ErrSessionNotFound)
	_, err = sm.GetSession(ctx, snap.GameID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCleanupIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	sm, _ := newTestManager(t, WithClock(clock.Now))
	ctx := context.Background()

	idle, err := sm.CreateSession(ctx, domain.ModePvP, "")
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	active, err := sm.CreateSession(ctx, domain.ModePvP, "")
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)
	playAll(t, sm, active.GameID, 1)

	assert.Equal(t, 1, sm.CleanupIdleSessions(30*time.Minute))
	assert.Equal(t, 1, sm.ActiveSessions())

	_, err = sm.GetSession(ctx, idle.GameID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = sm.GetSession(ctx, active.GameID)
	assert.NoError(t, err)
}

func TestShutdownCancelsPendingMoves(t *testing.T) {
	sm, _ := newTestManager(t, WithThinkingDelays(map[domain.Difficulty]time.Duration{
		domain.DifficultyMedium: time.Hour,
	}))
	ctx := context.Background()
	snap, err := sm.CreateSession(ctx, domain.ModeAI, domain.DifficultyMedium)
	require.NoError(t, err)
	_, err = sm.HandleMove(ctx, snap.GameID, 3)
	require.NoError(t, err)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, sm.Shutdown(shutdownCtx))

	got, err := sm.GetSession(ctx, snap.GameID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.State.MoveCount)
}

func TestListSessionsOldestFirst(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	sm, _ := newTestManager(t, WithClock(clock.Now))
	ctx := context.Background()

	first, err := sm.CreateSession(ctx, domain.ModeAI, domain.DifficultyEasy)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := sm.CreateSession(ctx, domain.ModePvP, "")
	require.NoError(t, err)

	list := sm.ListSessions()
	require.Len(t, list, 2)
	assert.Equal(t, first.GameID, list[0].GameID)
	assert.Equal(t, second.GameID, list[1].GameID)
}

type closingNotifier struct {
	recordingNotifier
	closed []string
}

func (n *closingNotifier) CloseGame(gameID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, gameID)
}

func TestRemoveSessionClosesGame(t *testing.T) {
	notifier := &closingNotifier{}
	sm, _ := newTestManager(t, WithNotifier(notifier))
	ctx := context.Background()

	snap, err := sm.CreateSession(ctx, domain.ModePvP, "")
	require.NoError(t, err)
	require.NoError(t, sm.RemoveSession(ctx, snap.GameID))

	assert.Equal(t, []string{snap.GameID}, notifier.closed)
	assert.Equal(t, []string{domain.MsgGameClosed}, notifier.types())

	// nothing to close when the game is unknown
	assert.ErrorIs(t, sm.RemoveSession(ctx, snap.GameID), ErrSessionNotFound)
	assert.Len(t, notifier.closed, 1)
}
