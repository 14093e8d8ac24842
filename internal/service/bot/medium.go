package bot

import (
	"github.com/neonarcade/connect-four/backend/internal/domain"
)

// medium takes a win, otherwise blocks one, otherwise plays randomly
func (e *Engine) mediumMove(board domain.Board, botPlayer domain.PlayerID) int {
	validColumns := domain.GetValidMoves(board)
	if len(validColumns) == 0 {
		return FallbackColumn
	}

	if col, ok := findWinOrBlock(board, validColumns, botPlayer); ok {
		return col
	}
	return e.pick(validColumns)
}

// findWinOrBlock returns the lowest column that wins for botPlayer, or failing
// that the lowest column where the opponent would win next turn.
func findWinOrBlock(board domain.Board, validColumns []int, botPlayer domain.PlayerID) (int, bool) {
	for _, col := range validColumns {
		if domain.IsWinningMove(board, col, botPlayer) {
			return col, true
		}
	}

	opponent := botPlayer.Opponent()
	for _, col := range validColumns {
		if domain.IsWinningMove(board, col, opponent) {
			return col, true
		}
	}
	return 0, false
}
