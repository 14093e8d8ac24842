package bot

import (
	"github.com/neonarcade/connect-four/backend/internal/domain"
)

const (
	CENTER_WEIGHT = 3

	// window scores, for the 4 cells starting at a disk
	SCORE_FOUR        = 100000
	SCORE_THREE       = 100
	SCORE_TWO         = 10
	SCORE_BLOCK_THREE = 90
	SCORE_BLOCK_TWO   = 5
)

// evaluateBoard calculates a heuristic score for the current board position
func evaluateBoard(board domain.Board, botPlayer domain.PlayerID) int {
	opponent := botPlayer.Opponent()
	score := 0

	for row := 0; row < domain.Rows; row++ {
		for col := 0; col < domain.Columns; col++ {
			switch board[row][col] {
			case botPlayer:
				score += evaluatePosition(board, row, col, botPlayer)
			case opponent:
				score -= evaluatePosition(board, row, col, opponent)
			}
		}
	}

	return score
}

// evaluatePosition evaluates a single disk's contribution for its owner
func evaluatePosition(board domain.Board, row, col int, player domain.PlayerID) int {
	centerCol := domain.Columns / 2
	score := (3 - abs(col-centerCol)) * CENTER_WEIGHT

	for _, dir := range domain.Directions {
		score += evaluateWindow(board, row, col, dir, player)
	}

	return score
}

// evaluateWindow scores the ToWin cells starting at (row, col) along dir.
// A window that leaves the board is worth nothing.
func evaluateWindow(board domain.Board, row, col int, dir domain.Direction, player domain.PlayerID) int {
	playerCount, emptyCount, opponentCount := 0, 0, 0

	for i := 0; i < domain.ToWin; i++ {
		r := row + dir.DeltaRow*i
		c := col + dir.DeltaCol*i
		if !isInBounds(r, c) {
			return 0
		}

		switch board[r][c] {
		case player:
			playerCount++
		case domain.Empty:
			emptyCount++
		default:
			opponentCount++
		}
	}

	score := 0
	if playerCount == 4 {
		score += SCORE_FOUR
	} else if playerCount == 3 && emptyCount == 1 {
		score += SCORE_THREE
	} else if playerCount == 2 && emptyCount == 2 {
		score += SCORE_TWO
	}

	if opponentCount == 3 && emptyCount == 1 {
		score += SCORE_BLOCK_THREE
	} else if opponentCount == 2 && emptyCount == 2 {
		score += SCORE_BLOCK_TWO
	}

	return score
}

// Helper: check if position is within board bounds
func isInBounds(row, col int) bool {
	return row >= 0 && row < domain.Rows && col >= 0 && col < domain.Columns
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
