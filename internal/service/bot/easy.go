package bot

import (
	"github.com/neonarcade/connect-four/backend/internal/domain"
)

func (e *Engine) easyMove(board domain.Board) int {
	validColumns := domain.GetValidMoves(board)
	if len(validColumns) == 0 {
		return FallbackColumn
	}
	return e.pick(validColumns)
}
