package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neonarcade/connect-four/backend/internal/domain"
	"github.com/neonarcade/connect-four/backend/internal/service/game"
)

type GameHandler struct {
	SessionManager *game.SessionManager
}

func NewGameHandler(sm *game.SessionManager) *GameHandler {
	return &GameHandler{SessionManager: sm}
}

type gameResponse struct {
	domain.Snapshot
	BotName string `json:"botName,omitempty"`
}

func toGameResponse(snap domain.Snapshot) gameResponse {
	response := gameResponse{Snapshot: snap}
	if snap.Mode == domain.ModeAI {
		response.BotName = snap.Difficulty.BotName()
	}
	return response
}

type createGameRequest struct {
	Mode       string `json:"mode"`
	Difficulty string `json:"difficulty"`
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Mode == "" {
		req.Mode = string(domain.ModeAI)
	}

	snap, err := h.SessionManager.CreateSession(c.Request.Context(), domain.GameMode(req.Mode), domain.Difficulty(req.Difficulty))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toGameResponse(snap))
}

func (h *GameHandler) GetGame(c *gin.Context) {
	snap, err := h.SessionManager.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toGameResponse(snap))
}

func (h *GameHandler) DeleteGame(c *gin.Context) {
	if err := h.SessionManager.RemoveSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type moveRequest struct {
	Column *int `json:"column" binding:"required"`
}

func (h *GameHandler) MakeMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.SessionManager.HandleMove(c.Request.Context(), c.Param("id"), *req.Column)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toGameResponse(snap))
}

func (h *GameHandler) ResetGame(c *gin.Context) {
	snap, err := h.SessionManager.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toGameResponse(snap))
}

type difficultyRequest struct {
	Difficulty string `json:"difficulty" binding:"required"`
}

func (h *GameHandler) SetDifficulty(c *gin.Context) {
	var req difficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.SessionManager.SetDifficulty(c.Request.Context(), c.Param("id"), domain.Difficulty(req.Difficulty))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toGameResponse(snap))
}

func (h *GameHandler) Hint(c *gin.Context) {
	column, err := h.SessionManager.Hint(c.Request.Context(), c.Param("id"), domain.Difficulty(c.Query("difficulty")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": column})
}
