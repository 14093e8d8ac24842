package bot

import (
	"math"

	"github.com/neonarcade/connect-four/backend/internal/domain"
)

const (
	MINIMAX_WIN  = 10000
	MINIMAX_LOSS = -10000
)

// hardMove implements hard difficulty using Minimax with alpha-beta pruning
func (e *Engine) hardMove(board domain.Board, botPlayer domain.PlayerID) int {
	validColumns := domain.GetValidMoves(board)
	if len(validColumns) == 0 {
		return FallbackColumn
	}

	if col, ok := findWinOrBlock(board, validColumns, botPlayer); ok {
		return col
	}

	col, _ := e.Search(board, botPlayer)
	return col
}

// Search scores every valid column with minimax and returns the best one.
// Ties keep the lowest column.
func (e *Engine) Search(board domain.Board, botPlayer domain.PlayerID) (int, int) {
	validColumns := domain.GetValidMoves(board)
	if len(validColumns) == 0 {
		return FallbackColumn, 0
	}

	bestCol := validColumns[0]
	bestScore := math.MinInt

	for _, col := range validColumns {
		score, ok := e.scoreColumn(board, col, botPlayer)
		if !ok {
			continue
		}
		if score > bestScore {
			bestScore = score
			bestCol = col
		}
	}

	return bestCol, bestScore
}

// scoreColumn plays col for botPlayer and searches the reply with a full window
func (e *Engine) scoreColumn(board domain.Board, col int, botPlayer domain.PlayerID) (int, bool) {
	child, _, err := domain.SimulateMove(board, col, botPlayer)
	if err != nil {
		return 0, false
	}
	return e.minimax(child, e.depth, false, botPlayer, math.MinInt, math.MaxInt), true
}

// minimax scores board from botPlayer's point of view. The side to move is
// botPlayer when maximizing and its opponent otherwise.
func (e *Engine) minimax(board domain.Board, depth int, maximizing bool, botPlayer domain.PlayerID, alpha, beta int) int {
	opponent := botPlayer.Opponent()
	validColumns := domain.GetValidMoves(board)

	mover := opponent
	if maximizing {
		mover = botPlayer
	}

	// checked before the depth cutoff so leaves still see a win in hand.
	// The side to move is checked first.
	if score, ok := terminalScore(board, validColumns, mover, botPlayer); ok {
		return score
	}

	if depth == 0 || len(validColumns) == 0 || domain.IsBoardFull(board) {
		return evaluateBoard(board, botPlayer)
	}

	if maximizing {
		maxEval := math.MinInt
		for _, col := range validColumns {
			child, _, _ := domain.SimulateMove(board, col, botPlayer)

			eval := e.minimax(child, depth-1, false, botPlayer, alpha, beta)
			maxEval = max(maxEval, eval)
			alpha = max(alpha, eval)

			if beta <= alpha {
				break // Beta cutoff
			}
		}
		return maxEval
	}

	minEval := math.MaxInt
	for _, col := range validColumns {
		child, _, _ := domain.SimulateMove(board, col, opponent)

		eval := e.minimax(child, depth-1, true, botPlayer, alpha, beta)
		minEval = min(minEval, eval)
		beta = min(beta, eval)

		if beta <= alpha {
			break // Alpha cutoff
		}
	}
	return minEval
}

// terminalScore reports a drop-win for either player, mover first. An AI
// line scores MINIMAX_WIN and an opponent line MINIMAX_LOSS.
func terminalScore(board domain.Board, validColumns []int, mover, botPlayer domain.PlayerID) (int, bool) {
	for _, player := range [2]domain.PlayerID{mover, mover.Opponent()} {
		if !hasImmediateWin(board, validColumns, player) {
			continue
		}
		if player == botPlayer {
			return MINIMAX_WIN, true
		}
		return MINIMAX_LOSS, true
	}
	return 0, false
}

func hasImmediateWin(board domain.Board, validColumns []int, player domain.PlayerID) bool {
	for _, col := range validColumns {
		if domain.IsWinningMove(board, col, player) {
			return true
		}
	}
	return false
}
