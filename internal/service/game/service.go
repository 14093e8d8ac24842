package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/neonarcade/connect-four/backend/internal/domain"
	"github.com/neonarcade/connect-four/backend/internal/service/bot"
	"github.com/neonarcade/connect-four/backend/pkg/uid"
)

var (
	ErrSessionNotFound = errors.New("game not found")
	ErrNotYourTurn     = errors.New("not your turn")
)

// DefaultThinkingDelays mirror the pauses the web client used before an AI move
var DefaultThinkingDelays = map[domain.Difficulty]time.Duration{
	domain.DifficultyEasy:   500 * time.Millisecond,
	domain.DifficultyMedium: 800 * time.Millisecond,
	domain.DifficultyHard:   1200 * time.Millisecond,
}

// Notifier receives every message about a game, in order
type Notifier interface {
	Broadcast(gameID string, message domain.ServerMessage)
}

// GameCloser is implemented by notifiers that hold per-game resources, such as
// sockets, to release once a game is removed
type GameCloser interface {
	CloseGame(gameID string)
}

// SnapshotRepository keeps the current state of each game so it survives a
// restart. GetSnapshot returns nil, nil for an unknown game.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error
	GetSnapshot(ctx context.Context, gameID string) (*domain.Snapshot, error)
	DeleteSnapshot(ctx context.Context, gameID string) error
}

type GameSession struct {
	GameID     string
	Mode       domain.GameMode
	Difficulty domain.Difficulty
	BotPlayer  domain.PlayerID
	State      domain.GameState
	CreatedAt  time.Time
	UpdatedAt  time.Time

	cancelBot context.CancelFunc
	mu        sync.Mutex
}

func (gs *GameSession) snapshot() domain.Snapshot {
	return domain.Snapshot{
		GameID:     gs.GameID,
		Mode:       gs.Mode,
		Difficulty: gs.Difficulty,
		BotPlayer:  gs.BotPlayer,
		State:      gs.State,
		CreatedAt:  gs.CreatedAt,
		UpdatedAt:  gs.UpdatedAt,
	}
}

// stopBot cancels a pending AI move; caller holds gs.mu
func (gs *GameSession) stopBot() {
	if gs.cancelBot != nil {
		gs.cancelBot()
		gs.cancelBot = nil
	}
}

// SessionManager manages active game sessions
type SessionManager struct {
	Session map[string]*GameSession // gameID → GameSession
	mu      sync.RWMutex

	engine         *bot.Engine
	repo           SnapshotRepository
	notifier       Notifier
	delays         map[domain.Difficulty]time.Duration
	persistTimeout time.Duration
	now            func() time.Time

	pending sync.WaitGroup
}

type Option func(*SessionManager)

func WithEngine(engine *bot.Engine) Option {
	return func(sm *SessionManager) { sm.engine = engine }
}

func WithRepository(repo SnapshotRepository) Option {
	return func(sm *SessionManager) { sm.repo = repo }
}

func WithNotifier(n Notifier) Option {
	return func(sm *SessionManager) { sm.notifier = n }
}

// WithThinkingDelays overrides the pause before each AI move; missing
// difficulties move immediately.
func WithThinkingDelays(delays map[domain.Difficulty]time.Duration) Option {
	return func(sm *SessionManager) { sm.delays = delays }
}

func WithClock(now func() time.Time) Option {
	return func(sm *SessionManager) { sm.now = now }
}

func NewSessionManager(opts ...Option) *SessionManager {
	sm := &SessionManager{
		Session:        make(map[string]*GameSession),
		engine:         bot.NewEngine(),
		delays:         DefaultThinkingDelays,
		persistTimeout: 3 * time.Second,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

func (sm *SessionManager) CreateSession(ctx context.Context, mode domain.GameMode, difficulty domain.Difficulty) (domain.Snapshot, error) {
	mode, err := domain.ParseGameMode(string(mode))
	if err != nil {
		return domain.Snapshot{}, err
	}
	difficulty, err = domain.ParseDifficulty(string(difficulty))
	if err != nil {
		return domain.Snapshot{}, err
	}

	now := sm.now()
	session := &GameSession{
		GameID:     uid.GenerateGameID(),
		Mode:       mode,
		Difficulty: difficulty,
		State:      domain.NewGameState(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	// the human always opens against the AI
	if mode == domain.ModeAI {
		session.BotPlayer = domain.Player2
	}

	sm.mu.Lock()
	sm.Session[session.GameID] = session
	sm.mu.Unlock()

	log.Info().
		Str("component", "session").
		Str("game_id", session.GameID).
		Str("mode", string(mode)).
		Str("difficulty", string(difficulty)).
		Msg("session created")

	session.mu.Lock()
	defer session.mu.Unlock()
	snap := session.snapshot()
	sm.persist(snap)
	return snap, nil
}

func (sm *SessionManager) GetSession(ctx context.Context, gameID string) (domain.Snapshot, error) {
	session, err := sm.lookup(ctx, gameID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.snapshot(), nil
}

// lookup finds a live session, restoring it from the repository when needed
func (sm *SessionManager) lookup(ctx context.Context, gameID string) (*GameSession, error) {
	sm.mu.RLock()
	session, exists := sm.Session[gameID]
	sm.mu.RUnlock()
	if exists {
		return session, nil
	}

	if sm.repo == nil {
		return nil, ErrSessionNotFound
	}

	snap, err := sm.repo.GetSnapshot(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	if snap == nil {
		return nil, ErrSessionNotFound
	}

	restored := &GameSession{
		GameID:     snap.GameID,
		Mode:       snap.Mode,
		Difficulty: snap.Difficulty,
		BotPlayer:  snap.BotPlayer,
		State:      snap.State,
		CreatedAt:  snap.CreatedAt,
		UpdatedAt:  snap.UpdatedAt,
	}

	sm.mu.Lock()
	if current, ok := sm.Session[gameID]; ok {
		// another request restored it first
		sm.mu.Unlock()
		return current, nil
	}
	sm.Session[gameID] = restored
	sm.mu.Unlock()

	log.Info().Str("component", "session").Str("game_id", gameID).Int("move_count", snap.State.MoveCount).Msg("session restored from snapshot")

	restored.mu.Lock()
	if restored.snapshot().IsBotTurn() {
		sm.scheduleBotMove(restored)
	}
	restored.mu.Unlock()

	return restored, nil
}

// HandleMove plays column for the human whose turn it is
func (sm *SessionManager) HandleMove(ctx context.Context, gameID string, column int) (domain.Snapshot, error) {
	session, err := sm.lookup(ctx, gameID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.snapshot().IsBotTurn() {
		return session.snapshot(), ErrNotYourTurn
	}

	if err := sm.applyMove(session, column); err != nil {
		return session.snapshot(), err
	}

	if session.snapshot().IsBotTurn() {
		sm.scheduleBotMove(session)
	}
	return session.snapshot(), nil
}

// applyMove runs the transition and tells everyone about it; caller holds gs.mu
func (sm *SessionManager) applyMove(gs *GameSession, column int) error {
	player := gs.State.CurrentPlayer
	next, row, err := domain.TryMove(gs.State, column)
	if err != nil {
		return err
	}

	gs.State = next
	gs.UpdatedAt = sm.now()

	sm.notify(gs.GameID, domain.ServerMessage{
		Type:   domain.MsgMoveMade,
		Column: &column,
		Row:    &row,
		Player: player,
		State:  &next,
	})

	if next.IsFinished() {
		message := "draw"
		if next.Status == domain.StatusWon {
			message = "connect_four"
		}
		sm.notify(gs.GameID, domain.ServerMessage{
			Type:    domain.MsgGameOver,
			Message: message,
			Winner:  next.Winner,
			State:   &next,
		})
		log.Info().
			Str("component", "session").
			Str("game_id", gs.GameID).
			Str("status", string(next.Status)).
			Int("winner", int(next.Winner)).
			Int("moves", next.MoveCount).
			Msg("game over")
	}

	sm.persist(gs.snapshot())
	return nil
}

// scheduleBotMove starts the AI turn in the background; caller holds gs.mu.
// The move is dropped if the game changed or was reset in the meantime.
func (sm *SessionManager) scheduleBotMove(gs *GameSession) {
	gs.stopBot()

	ctx, cancel := context.WithCancel(context.Background())
	gs.cancelBot = cancel

	board := gs.State.Board
	expectedMoves := gs.State.MoveCount
	botPlayer := gs.BotPlayer
	difficulty := gs.Difficulty
	delay := sm.delays[difficulty]

	sm.notify(gs.GameID, domain.ServerMessage{
		Type:       domain.MsgAIThinking,
		Player:     botPlayer,
		Difficulty: difficulty,
	})

	sm.pending.Add(1)
	go func() {
		defer sm.pending.Done()

		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		}

		column := sm.engine.CalculateBestMove(board, botPlayer, difficulty)

		gs.mu.Lock()
		defer gs.mu.Unlock()

		// reset, removal or a newer schedule cancels this move
		if ctx.Err() != nil {
			return
		}
		gs.cancelBot = nil
		cancel()

		if gs.State.MoveCount != expectedMoves || !gs.snapshot().IsBotTurn() {
			return
		}

		if err := sm.applyMove(gs, column); err != nil {
			log.Error().Err(err).Str("component", "bot").Str("game_id", gs.GameID).Int("column", column).Msg("bot move rejected")
			return
		}
		log.Debug().Str("component", "bot").Str("game_id", gs.GameID).Int("column", column).Str("difficulty", string(difficulty)).Msg("bot moved")
	}()
}

// Reset starts the game over with the same mode and difficulty
func (sm *SessionManager) Reset(ctx context.Context, gameID string) (domain.Snapshot, error) {
	session, err := sm.lookup(ctx, gameID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.stopBot()
	session.State = domain.NewGameState()
	session.UpdatedAt = sm.now()

	state := session.State
	sm.notify(gameID, domain.ServerMessage{Type: domain.MsgGameReset, State: &state})
	sm.persist(session.snapshot())

	log.Info().Str("component", "session").Str("game_id", gameID).Msg("game reset")
	return session.snapshot(), nil
}

// SetDifficulty changes the AI level used from the next AI move on
func (sm *SessionManager) SetDifficulty(ctx context.Context, gameID string, difficulty domain.Difficulty) (domain.Snapshot, error) {
	difficulty, err := domain.ParseDifficulty(string(difficulty))
	if err != nil {
		return domain.Snapshot{}, err
	}

	session, err := sm.lookup(ctx, gameID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.Difficulty = difficulty
	session.UpdatedAt = sm.now()

	sm.notify(gameID, domain.ServerMessage{Type: domain.MsgDifficulty, Difficulty: difficulty})
	sm.persist(session.snapshot())
	return session.snapshot(), nil
}

// Hint asks the AI which column the player to move should pick. Nothing is
// played. An empty difficulty uses the game's own.
func (sm *SessionManager) Hint(ctx context.Context, gameID string, difficulty domain.Difficulty) (int, error) {
	session, err := sm.lookup(ctx, gameID)
	if err != nil {
		return 0, err
	}

	session.mu.Lock()
	state := session.State
	if difficulty == "" {
		difficulty = session.Difficulty
	}
	session.mu.Unlock()

	difficulty, err = domain.ParseDifficulty(string(difficulty))
	if err != nil {
		return 0, err
	}

	if state.IsFinished() {
		return 0, domain.ErrGameOver
	}
	return sm.engine.CalculateBestMove(state.Board, state.CurrentPlayer, difficulty), nil
}

func (sm *SessionManager) RemoveSession(ctx context.Context, gameID string) error {
	sm.mu.Lock()
	session, exists := sm.Session[gameID]
	delete(sm.Session, gameID)
	sm.mu.Unlock()

	if exists {
		session.mu.Lock()
		session.stopBot()
		session.mu.Unlock()
	}

	if sm.repo == nil {
		if !exists {
			return ErrSessionNotFound
		}
	} else {
		if !exists {
			snap, err := sm.repo.GetSnapshot(ctx, gameID)
			if err != nil {
				return fmt.Errorf("load snapshot %s: %w", gameID, err)
			}
			if snap == nil {
				return ErrSessionNotFound
			}
		}
		if err := sm.repo.DeleteSnapshot(ctx, gameID); err != nil {
			return fmt.Errorf("delete snapshot %s: %w", gameID, err)
		}
	}

	sm.notify(gameID, domain.ServerMessage{Type: domain.MsgGameClosed, Message: "game removed"})
	if closer, ok := sm.notifier.(GameCloser); ok {
		closer.CloseGame(gameID)
	}

	log.Info().Str("component", "session").Str("game_id", gameID).Msg("session removed")
	return nil
}

// CleanupIdleSessions drops live sessions untouched for longer than maxIdle.
// Their snapshots stay in the repository until it expires them.
func (sm *SessionManager) CleanupIdleSessions(maxIdle time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	count := 0
	now := sm.now()

	for gameID, session := range sm.Session {
		session.mu.Lock()
		idle := now.Sub(session.UpdatedAt) > maxIdle
		if idle {
			session.stopBot()
		}
		session.mu.Unlock()

		if idle {
			delete(sm.Session, gameID)
			count++
		}
	}

	if count > 0 {
		log.Info().Str("component", "session").Int("removed", count).Msg("memory cleanup: removed idle game sessions")
	}
	return count
}

// ListSessions returns every live game, oldest first
func (sm *SessionManager) ListSessions() []domain.Snapshot {
	sm.mu.RLock()
	snapshots := make([]domain.Snapshot, 0, len(sm.Session))
	for _, session := range sm.Session {
		session.mu.Lock()
		snapshots = append(snapshots, session.snapshot())
		session.mu.Unlock()
	}
	sm.mu.RUnlock()

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].CreatedAt.Equal(snapshots[j].CreatedAt) {
			return snapshots[i].GameID < snapshots[j].GameID
		}
		return snapshots[i].CreatedAt.Before(snapshots[j].CreatedAt)
	})
	return snapshots
}

func (sm *SessionManager) ActiveSessions() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.Session)
}

// Wait blocks until every scheduled AI move has finished or been cancelled
func (sm *SessionManager) Wait() {
	sm.pending.Wait()
}

// Shutdown cancels pending AI moves and waits for them to stop
func (sm *SessionManager) Shutdown(ctx context.Context) error {
	sm.mu.RLock()
	for _, session := range sm.Session {
		session.mu.Lock()
		session.stopBot()
		session.mu.Unlock()
	}
	sm.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		sm.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (sm *SessionManager) notify(gameID string, message domain.ServerMessage) {
	if sm.notifier == nil {
		return
	}
	message.GameID = gameID
	sm.notifier.Broadcast(gameID, message)
}

// persist writes the snapshot with its own deadline so a cancelled request
// cannot lose the latest state. Failures are logged, the game goes on.
func (sm *SessionManager) persist(snap domain.Snapshot) {
	if sm.repo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sm.persistTimeout)
	defer cancel()

	if err := sm.repo.SaveSnapshot(ctx, snap); err != nil {
		log.Error().Err(err).Str("component", "session").Str("game_id", snap.GameID).Msg("error saving snapshot")
	}
}
