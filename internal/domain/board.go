package domain

// Board is indexed [row][column]; row 0 is the top and Rows-1 the bottom.
// It is an array, so assigning or passing a Board copies every cell.
type Board [Rows][Columns]PlayerID

func NewBoard() Board {
	return Board{}
}

func inColumnRange(column int) bool {
	return column >= 0 && column < Columns
}

func inBounds(row, column int) bool {
	return row >= 0 && row < Rows && inColumnRange(column)
}

func IsValidMove(board Board, column int) bool {
	if !inColumnRange(column) {
		return false
	}

	// here board[0] represents the top row (0 -> top and 5 -> bottom)
	return board[0][column] == Empty
}

// FindLowestRow returns the bottommost empty row of a column, or NoRow when
// the column is full or does not exist.
func FindLowestRow(board Board, column int) int {
	if !inColumnRange(column) {
		return NoRow
	}

	for row := Rows - 1; row >= 0; row-- {
		if board[row][column] == Empty {
			return row
		}
	}
	return NoRow
}

// DropDisk places the disk in the caller's board and returns the row it landed in.
func DropDisk(board *Board, column int, player PlayerID) (int, error) {
	if !inColumnRange(column) {
		return NoRow, ErrColumnOutOfRange
	}

	row := FindLowestRow(*board, column)
	if row == NoRow {
		return NoRow, ErrColumnFull
	}
	board[row][column] = player
	return row, nil
}

// SimulateMove drops a disk into a copy of the board; the argument is never touched.
func SimulateMove(board Board, column int, player PlayerID) (Board, int, error) {
	row, err := DropDisk(&board, column, player)
	if err != nil {
		return board, NoRow, err
	}
	return board, row, nil
}

// the top row is enough since disks never float
func IsBoardFull(board Board) bool {
	for c := 0; c < Columns; c++ {
		if board[0][c] == Empty {
			return false
		}
	}
	return true
}

// GetValidMoves lists playable columns in ascending order
func GetValidMoves(board Board) []int {
	validMoves := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if IsValidMove(board, col) {
			validMoves = append(validMoves, col)
		}
	}
	return validMoves
}

// CountDisks returns the number of occupied cells
func CountDisks(board Board) int {
	count := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			if board[r][c] != Empty {
				count++
			}
		}
	}
	return count
}

// this counts the player's disks in a direction, not including (row, column)
func CountDiskInDirection(board Board, row, column int, deltaRow, deltaCol int, player PlayerID) int {
	count := 0
	r, c := row+deltaRow, column+deltaCol
	for inBounds(r, c) && board[r][c] == player {
		count++
		r += deltaRow
		c += deltaCol
	}
	return count
}
