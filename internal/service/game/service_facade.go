package game

import (
	"github.com/neonarcade/connect-four/backend/internal/domain"
	"github.com/neonarcade/connect-four/backend/internal/service/bot"
)

// Service is the stateless entry point for game logic (facade). The caller
// owns the state and passes it in whole.
type Service struct {
	Engine *bot.Engine
}

func NewService(engine *bot.Engine) *Service {
	if engine == nil {
		engine = bot.NewEngine()
	}
	return &Service{
		Engine: engine,
	}
}

// MoveResult is the outcome of one move on a caller owned state
type MoveResult struct {
	State  domain.GameState `json:"state"`
	Column int              `json:"column"`
	Row    int              `json:"row"`
}

func (s *Service) ApplyMove(state domain.GameState, column int) (MoveResult, error) {
	next, row, err := domain.TryMove(state, column)
	if err != nil {
		return MoveResult{State: state, Column: column, Row: domain.NoRow}, err
	}
	return MoveResult{State: next, Column: column, Row: row}, nil
}

// AIMove lets the engine choose for the player to move and plays it
func (s *Service) AIMove(state domain.GameState, difficulty domain.Difficulty) (MoveResult, error) {
	if state.IsFinished() {
		return MoveResult{State: state, Row: domain.NoRow}, domain.ErrGameOver
	}
	column := s.Engine.CalculateBestMove(state.Board, state.CurrentPlayer, difficulty)
	return s.ApplyMove(state, column)
}
