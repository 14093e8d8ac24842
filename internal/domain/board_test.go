package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boardFrom builds a board from Rows strings of Columns runes, top row first.
// '1' and '2' are players, anything else is empty.
func boardFrom(t *testing.T, rows ...string) Board {
	t.Helper()
	require.Len(t, rows, Rows)

	var board Board
	for r, line := range rows {
		require.Len(t, line, Columns, "row %d", r)
		for c, ch := range line {
			switch ch {
			case '1':
				board[r][c] = Player1
			case '2':
				board[r][c] = Player2
			}
		}
	}
	return board
}

func TestNewBoardIsEmpty(t *testing.T) {
	board := NewBoard()
	assert.Equal(t, 0, CountDisks(board))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, GetValidMoves(board))
	assert.False(t, IsBoardFull(board))
}

func TestIsValidMoveRejectsOutOfRange(t *testing.T) {
	board := NewBoard()
	for _, col := range []int{-100, -1, Columns, Columns + 1} {
		assert.False(t, IsValidMove(board, col), "column %d", col)
		assert.Equal(t, NoRow, FindLowestRow(board, col), "column %d", col)
	}
}

func TestFindLowestRowStacksFromBottom(t *testing.T) {
	board := boardFrom(t,
		"2......",
		"1......",
		"2......",
		"1...1..",
		"2...2..",
		"1.1.1..",
	)

	assert.Equal(t, NoRow, FindLowestRow(board, 0))
	assert.False(t, IsValidMove(board, 0))
	assert.Equal(t, 5, FindLowestRow(board, 1))
	assert.Equal(t, 4, FindLowestRow(board, 2))
	assert.Equal(t, 2, FindLowestRow(board, 4))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, GetValidMoves(board))
}

func TestDropDiskErrors(t *testing.T) {
	board := boardFrom(t,
		"1......",
		"2......",
		"1......",
		"2......",
		"1......",
		"2......",
	)

	_, err := DropDisk(&board, 0, Player1)
	assert.ErrorIs(t, err, ErrColumnFull)

	_, err = DropDisk(&board, 9, Player1)
	assert.ErrorIs(t, err, ErrColumnOutOfRange)

	row, err := DropDisk(&board, 3, Player2)
	require.NoError(t, err)
	assert.Equal(t, Rows-1, row)
	assert.Equal(t, Player2, board[Rows-1][3])
}

func TestSimulateMoveLeavesInputUntouched(t *testing.T) {
	board := NewBoard()
	next, row, err := SimulateMove(board, 3, Player1)
	require.NoError(t, err)

	assert.Equal(t, Rows-1, row)
	assert.Equal(t, Player1, next[row][3])
	assert.Equal(t, Empty, board[row][3])
	assert.Equal(t, 0, CountDisks(board))
}

func TestIsBoardFullChecksTopRow(t *testing.T) {
	full := boardFrom(t,
		"1212121",
		"1212121",
		"2121212",
		"2121212",
		"1212121",
		"1212121",
	)
	assert.True(t, IsBoardFull(full))
	assert.Empty(t, GetValidMoves(full))

	full[0][6] = Empty
	assert.False(t, IsBoardFull(full))
	assert.Equal(t, []int{6}, GetValidMoves(full))
}

// Random legal play must never leave a floating disk, and FindLowestRow must
// always point at the lowest free cell.
func TestFindLowestRowProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for game := 0; game < 200; game++ {
		state := NewGameState()
		for !state.IsFinished() {
			for col := 0; col < Columns; col++ {
				row := FindLowestRow(state.Board, col)
				if row == NoRow {
					assert.NotEqual(t, Empty, state.Board[0][col])
					continue
				}
				assert.Equal(t, Empty, state.Board[0][col])
				assert.Equal(t, Empty, state.Board[row][col])
				if row < Rows-1 {
					assert.NotEqual(t, Empty, state.Board[row+1][col])
				}
				for above := 0; above < row; above++ {
					assert.Equal(t, Empty, state.Board[above][col])
				}
			}

			moves := GetValidMoves(state.Board)
			state = ApplyMove(state, moves[rng.Intn(len(moves))])
		}
	}
}
