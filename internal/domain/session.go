package domain

import "time"

// Snapshot is the current state of one hosted game
type Snapshot struct {
	GameID     string     `json:"gameId"`
	Mode       GameMode   `json:"mode"`
	Difficulty Difficulty `json:"difficulty"`
	BotPlayer  PlayerID   `json:"botPlayer"` // Empty in pvp mode
	State      GameState  `json:"state"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// IsBotTurn reports whether the AI should move next
func (s Snapshot) IsBotTurn() bool {
	return s.Mode == ModeAI && !s.State.IsFinished() && s.State.CurrentPlayer == s.BotPlayer
}
