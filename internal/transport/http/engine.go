package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neonarcade/connect-four/backend/internal/domain"
	"github.com/neonarcade/connect-four/backend/internal/service/game"
)

// EngineHandler exposes the rules and the AI without any server side state
type EngineHandler struct {
	GameService *game.Service
}

func NewEngineHandler(gs *game.Service) *EngineHandler {
	return &EngineHandler{GameService: gs}
}

func (h *EngineHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *EngineHandler) BoardInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rows":    domain.Rows,
		"columns": domain.Columns,
		"toWin":   domain.ToWin,
	})
}

type difficultyResponse struct {
	Name        domain.Difficulty `json:"name"`
	Description string            `json:"description"`
	BotName     string            `json:"botName"`
}

func (h *EngineHandler) Difficulties(c *gin.Context) {
	response := make([]difficultyResponse, 0, len(domain.Difficulties))
	for _, d := range domain.Difficulties {
		response = append(response, difficultyResponse{
			Name:        d,
			Description: d.Description(),
			BotName:     d.BotName(),
		})
	}
	c.JSON(http.StatusOK, response)
}

type engineMoveRequest struct {
	State  *domain.GameState `json:"state" binding:"required"`
	Column *int              `json:"column" binding:"required"`
}

type engineMoveResponse struct {
	State    domain.GameState `json:"state"`
	Accepted bool             `json:"accepted"`
	Row      int              `json:"row"`
	Error    string           `json:"error,omitempty"`
}

// Move applies one move to a client supplied state. A rejected move is not
// an HTTP error: the state comes back unchanged with accepted=false.
func (h *EngineHandler) Move(c *gin.Context) {
	var req engineMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.State.CurrentPlayer.IsPlayer() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currentPlayer must be 1 or 2"})
		return
	}

	result, err := h.GameService.ApplyMove(*req.State, *req.Column)
	response := engineMoveResponse{
		State:    result.State,
		Accepted: err == nil,
		Row:      result.Row,
	}
	if err != nil {
		response.Error = err.Error()
	}
	c.JSON(http.StatusOK, response)
}

type aiMoveRequest struct {
	Board      *domain.Board   `json:"board" binding:"required"`
	Player     domain.PlayerID `json:"player" binding:"required"`
	Difficulty string          `json:"difficulty"`
}

func (h *EngineHandler) AIMove(c *gin.Context) {
	var req aiMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Player.IsPlayer() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player must be 1 or 2"})
		return
	}
	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		respondError(c, err)
		return
	}

	column := h.GameService.Engine.CalculateBestMove(*req.Board, req.Player, difficulty)
	c.JSON(http.StatusOK, gin.H{"column": column})
}
