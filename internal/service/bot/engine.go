package bot

import (
	"math/rand"

	"github.com/neonarcade/connect-four/backend/internal/domain"
)

// RandomChoice returns an index in [0, n). It is only called with n > 0.
type RandomChoice func(n int) int

const (
	DefaultSearchDepth = 3

	// FallbackColumn is returned when there is no playable column at all
	FallbackColumn = 0
)

// Engine picks columns for the AI player. It never modifies the board it is
// given and is safe for concurrent use as long as its RandomChoice is.
type Engine struct {
	random RandomChoice
	depth  int
}

type Option func(*Engine)

// WithRandom replaces the random choice used by easy and medium
func WithRandom(fn RandomChoice) Option {
	return func(e *Engine) {
		if fn != nil {
			e.random = fn
		}
	}
}

// WithSearchDepth sets the plies searched below each candidate move on hard
func WithSearchDepth(depth int) Option {
	return func(e *Engine) {
		if depth >= 0 {
			e.depth = depth
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		random: rand.Intn,
		depth:  DefaultSearchDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// CalculateBestMove selects the best move based on difficulty
func CalculateBestMove(board domain.Board, botPlayer domain.PlayerID, difficulty domain.Difficulty) int {
	return defaultEngine.CalculateBestMove(board, botPlayer, difficulty)
}

func (e *Engine) CalculateBestMove(board domain.Board, botPlayer domain.PlayerID, difficulty domain.Difficulty) int {
	validColumns := domain.GetValidMoves(board)
	if len(validColumns) == 0 {
		return FallbackColumn
	}
	if !botPlayer.IsPlayer() {
		return validColumns[0]
	}

	switch difficulty {
	case domain.DifficultyMedium:
		return e.mediumMove(board, botPlayer)
	case domain.DifficultyHard:
		return e.hardMove(board, botPlayer)
	default:
		return e.easyMove(board)
	}
}

func (e *Engine) SearchDepth() int {
	return e.depth
}

func (e *Engine) pick(columns []int) int {
	i := e.random(len(columns))
	if i < 0 || i >= len(columns) {
		i = 0
	}
	return columns[i]
}
