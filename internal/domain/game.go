package domain

// GameState is one immutable snapshot of a game. Moves never modify a
// GameState; they return the next one.
type GameState struct {
	Board         Board      `json:"board"`
	CurrentPlayer PlayerID   `json:"currentPlayer"`
	Status        GameStatus `json:"status"`
	Winner        PlayerID   `json:"winner"` // Empty unless Status is won
	WinningCells  []Position `json:"winningCells"`
	MoveCount     int        `json:"moveCount"`
}

func NewGameState() GameState {
	return GameState{
		Board:         NewBoard(),
		CurrentPlayer: Player1,
		Status:        StatusPlaying,
		Winner:        Empty,
		WinningCells:  []Position{},
		MoveCount:     0,
	}
}

func (s GameState) IsFinished() bool {
	return s.Status != StatusPlaying
}

// ApplyMove drops the current player's disk in column. A rejected move (game
// over, bad or full column) returns state unchanged.
func ApplyMove(state GameState, column int) GameState {
	next, _, _ := TryMove(state, column)
	return next
}

// TryMove is ApplyMove that also reports the landing row, or why the move
// was rejected. On rejection the returned state is the input state.
func TryMove(state GameState, column int) (GameState, int, error) {
	if state.IsFinished() {
		return state, NoRow, ErrGameOver
	}
	if !inColumnRange(column) {
		return state, NoRow, ErrColumnOutOfRange
	}
	if !IsValidMove(state.Board, column) {
		return state, NoRow, ErrColumnFull
	}

	player := state.CurrentPlayer
	board, row, err := SimulateMove(state.Board, column, player)
	if err != nil {
		return state, NoRow, err
	}

	next := GameState{
		Board:         board,
		CurrentPlayer: player,
		Status:        StatusPlaying,
		Winner:        Empty,
		WinningCells:  []Position{},
		MoveCount:     state.MoveCount + 1,
	}

	// a move that fills the board and completes a line is a win
	if line, won := CheckWin(board, row, column, player); won {
		next.Status = StatusWon
		next.Winner = player
		next.WinningCells = line
		return next, row, nil
	}

	if IsBoardFull(board) {
		next.Status = StatusDraw
		return next, row, nil
	}

	next.CurrentPlayer = player.Opponent()
	return next, row, nil
}
