package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/neonarcade/connect-four/backend/internal/domain"
	"github.com/neonarcade/connect-four/backend/internal/service/game"
)

// statusFor maps service and rule errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, domain.ErrGameOver),
		errors.Is(err, domain.ErrColumnFull):
		return http.StatusConflict
	case errors.Is(err, domain.ErrColumnOutOfRange),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidDifficulty):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("component", "http").Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
