package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/neonarcade/connect-four/backend/internal/domain"
	"github.com/neonarcade/connect-four/backend/internal/service/game"
)

var (
	errMissingColumn  = errors.New("column is required")
	errUnknownMessage = errors.New("unknown message type")
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	Upgrader       websocket.Upgrader

	registered func(*Client) // test hook, runs right after a socket joins its game
}

// NewHandler creates a new WebSocket handler. An empty allowedOrigins list
// accepts any origin.
func NewHandler(cm *ConnectionManager, sm *game.SessionManager, allowedOrigins []string) *Handler {
	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == origin {
				return true
			}
		}
		return false
	}
}

// ServeGame upgrades the request and attaches the socket to gameID
func (h *Handler) ServeGame(w http.ResponseWriter, r *http.Request, gameID string) {
	if _, err := h.SessionManager.GetSession(r.Context(), gameID); err != nil {
		if errors.Is(err, game.ErrSessionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("component", "ws").Str("game_id", gameID).Msg("session lookup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("component", "ws").Msg("upgrade error")
		return
	}

	client, err := h.ConnManager.AddConnection(gameID, conn)
	if err != nil {
		log.Error().Err(err).Str("component", "ws").Msg("failed to register connection")
		conn.Close()
		return
	}
	log.Info().Str("component", "ws").Str("game_id", gameID).Str("client_id", client.ID).Msg("connection opened")

	if h.registered != nil {
		h.registered(client)
	}

	// read after registering so no move falls between the state and the broadcasts
	snap, err := h.SessionManager.GetSession(r.Context(), gameID)
	if err != nil {
		h.ConnManager.SendMessage(client, domain.ErrorMessage{Type: domain.MsgError, Message: err.Error()})
		h.ConnManager.RemoveConnection(client)
		return
	}

	state := snap.State
	h.ConnManager.SendMessage(client, domain.ServerMessage{
		Type:       domain.MsgGameState,
		GameID:     gameID,
		Difficulty: snap.Difficulty,
		State:      &state,
	})

	h.readPump(client, conn)
}

// readPump handles client messages until the socket closes
func (h *Handler) readPump(client *Client, conn *websocket.Conn) {
	defer func() {
		h.ConnManager.RemoveConnection(client)
		log.Info().Str("component", "ws").Str("game_id", client.GameID).Str("client_id", client.ID).Msg("connection closed")
	}()

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("component", "ws").Str("game_id", client.GameID).Msg("disconnected unexpectedly")
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.ConnManager.SendMessage(client, domain.ErrorMessage{Type: domain.MsgError, Message: "invalid message format"})
			continue
		}

		h.processMessage(client, msg)
	}
}

func (h *Handler) processMessage(client *Client, msg domain.ClientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var err error
	switch msg.Type {
	case domain.MsgMakeMove:
		if msg.Column == nil {
			err = errMissingColumn
			break
		}
		_, err = h.SessionManager.HandleMove(ctx, client.GameID, *msg.Column)
	case domain.MsgReset:
		_, err = h.SessionManager.Reset(ctx, client.GameID)
	case domain.MsgSetDifficulty:
		_, err = h.SessionManager.SetDifficulty(ctx, client.GameID, domain.Difficulty(msg.Difficulty))
	default:
		err = errUnknownMessage
	}

	if err != nil {
		log.Debug().Err(err).Str("component", "ws").Str("game_id", client.GameID).Str("type", msg.Type).Msg("message rejected")
		h.ConnManager.SendMessage(client, domain.ErrorMessage{Type: domain.MsgError, Message: err.Error()})
	}
}
