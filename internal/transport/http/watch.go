package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neonarcade/connect-four/backend/internal/domain"
	"github.com/neonarcade/connect-four/backend/internal/service/game"
)

// ConnectionCounter reports how many sockets are attached to a game
type ConnectionCounter interface {
	ConnectionCount(gameID string) int
}

type WatchHandler struct {
	SessionManager *game.SessionManager
	Connections    ConnectionCounter
}

func NewWatchHandler(sm *game.SessionManager, cc ConnectionCounter) *WatchHandler {
	return &WatchHandler{SessionManager: sm, Connections: cc}
}

type liveGameResponse struct {
	GameID          string            `json:"gameId"`
	Mode            domain.GameMode   `json:"mode"`
	Difficulty      domain.Difficulty `json:"difficulty,omitempty"`
	Status          domain.GameStatus `json:"status"`
	MoveCount       int               `json:"moveCount"`
	ConnectionCount int               `json:"connectionCount"`
	StartedAt       string            `json:"startedAt"`
}

// GetLiveGames returns every game currently held in memory
func (h *WatchHandler) GetLiveGames(c *gin.Context) {
	snapshots := h.SessionManager.ListSessions()

	response := make([]liveGameResponse, 0, len(snapshots))
	for _, g := range snapshots {
		item := liveGameResponse{
			GameID:    g.GameID,
			Mode:      g.Mode,
			Status:    g.State.Status,
			MoveCount: g.State.MoveCount,
			StartedAt: g.CreatedAt.UTC().Format(time.RFC3339),
		}
		if g.Mode == domain.ModeAI {
			item.Difficulty = g.Difficulty
		}
		if h.Connections != nil {
			item.ConnectionCount = h.Connections.ConnectionCount(g.GameID)
		}
		response = append(response, item)
	}

	c.JSON(http.StatusOK, response)
}
