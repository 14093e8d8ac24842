package domain

// Direction is a unit step along one of the four line axes
type Direction struct {
	DeltaRow int
	DeltaCol int
}

// Directions are checked in this order: horizontal, vertical,
// diagonal down-right, diagonal down-left.
var Directions = [4]Direction{
	{DeltaRow: 0, DeltaCol: 1},
	{DeltaRow: 1, DeltaCol: 0},
	{DeltaRow: 1, DeltaCol: 1},
	{DeltaRow: 1, DeltaCol: -1},
}

// CheckWin looks for a line of at least ToWin disks of player passing through
// (row, column). Both ways along each axis are scanned, so the cell may sit
// anywhere in the line. The whole run is returned, ordered from its
// negative-delta end.
func CheckWin(board Board, row, column int, player PlayerID) ([]Position, bool) {
	if !inBounds(row, column) || !player.IsPlayer() || board[row][column] != player {
		return nil, false
	}

	for _, dir := range Directions {
		back := CountDiskInDirection(board, row, column, -dir.DeltaRow, -dir.DeltaCol, player)
		forward := CountDiskInDirection(board, row, column, dir.DeltaRow, dir.DeltaCol, player)
		length := back + 1 + forward
		if length < ToWin {
			continue
		}

		startRow := row - dir.DeltaRow*back
		startCol := column - dir.DeltaCol*back
		line := make([]Position, 0, length)
		for i := 0; i < length; i++ {
			line = append(line, Position{
				Row: startRow + dir.DeltaRow*i,
				Col: startCol + dir.DeltaCol*i,
			})
		}
		return line, true
	}

	return nil, false
}

// IsWinningMove reports whether dropping player's disk in column would win
func IsWinningMove(board Board, column int, player PlayerID) bool {
	testBoard, row, err := SimulateMove(board, column, player)
	if err != nil {
		return false
	}
	_, won := CheckWin(testBoard, row, column, player)
	return won
}
