package http

import (
	"github.com/gin-gonic/gin"

	"github.com/neonarcade/connect-four/backend/internal/transport/http/middleware"
	"github.com/neonarcade/connect-four/backend/internal/transport/websocket"
)

type Handlers struct {
	Engine *EngineHandler
	Games  *GameHandler
	Watch  *WatchHandler
	WS     *websocket.Handler
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(h Handlers, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(allowedOrigins))

	api := router.Group("/api")
	{
		api.GET("/health", h.Engine.Health)
		api.GET("/board", h.Engine.BoardInfo)
		api.GET("/difficulties", h.Engine.Difficulties)
		api.POST("/engine/move", h.Engine.Move)
		api.POST("/engine/ai-move", h.Engine.AIMove)

		api.GET("/games", h.Watch.GetLiveGames)
		api.POST("/games", h.Games.CreateGame)
		api.GET("/games/:id", h.Games.GetGame)
		api.DELETE("/games/:id", h.Games.DeleteGame)
		api.POST("/games/:id/moves", h.Games.MakeMove)
		api.POST("/games/:id/reset", h.Games.ResetGame)
		api.PUT("/games/:id/difficulty", h.Games.SetDifficulty)
		api.GET("/games/:id/hint", h.Games.Hint)
	}

	if h.WS != nil {
		router.GET("/ws/games/:id", func(c *gin.Context) {
			h.WS.ServeGame(c.Writer, c.Request, c.Param("id"))
		})
	}

	return router
}
