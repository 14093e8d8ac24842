package domain

const (
	MsgGameState  = "game_state"
	MsgMoveMade   = "move_made"
	MsgAIThinking = "ai_thinking"
	MsgGameOver   = "game_over"
	MsgGameReset  = "game_reset"
	MsgDifficulty = "difficulty_changed"
	MsgGameClosed = "game_closed"
	MsgError      = "error"

	MsgMakeMove      = "make_move"
	MsgReset         = "reset"
	MsgSetDifficulty = "set_difficulty"
)

type ClientMessage struct {
	Type       string `json:"type"`
	Column     *int   `json:"column,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type ServerMessage struct {
	Type       string     `json:"type"`
	GameID     string     `json:"gameId,omitempty"`
	Message    string     `json:"message,omitempty"`
	Column     *int       `json:"column,omitempty"`
	Row        *int       `json:"row,omitempty"`
	Player     PlayerID   `json:"player,omitempty"`
	Winner     PlayerID   `json:"winner,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	State      *GameState `json:"state,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
