package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/neonarcade/connect-four/backend/internal/domain"
	"github.com/neonarcade/connect-four/backend/pkg/uid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	sendBuffer = 32
)

// Client is one socket watching one game. Only writePump writes to conn.
type Client struct {
	ID     string
	GameID string

	conn *websocket.Conn
	send chan []byte
}

// ConnectionManager fans game messages out to every socket on that game
type ConnectionManager struct {
	games map[string]map[string]*Client // gameID → clientID → Client
	mu    sync.RWMutex
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		games: make(map[string]map[string]*Client),
	}
}

// AddConnection registers conn for gameID and starts its writer
func (cm *ConnectionManager) AddConnection(gameID string, conn *websocket.Conn) (*Client, error) {
	id, err := uid.GenerateConnectionID()
	if err != nil {
		return nil, err
	}

	client := &Client{
		ID:     id,
		GameID: gameID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	cm.mu.Lock()
	if cm.games[gameID] == nil {
		cm.games[gameID] = make(map[string]*Client)
	}
	cm.games[gameID][id] = client
	cm.mu.Unlock()

	go client.writePump()
	return client, nil
}

// RemoveConnection unregisters client and stops its writer. Safe to call twice.
func (cm *ConnectionManager) RemoveConnection(client *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.removeLocked(client)
}

func (cm *ConnectionManager) removeLocked(client *Client) {
	clients, ok := cm.games[client.GameID]
	if !ok {
		return
	}
	if _, ok := clients[client.ID]; !ok {
		return
	}
	delete(clients, client.ID)
	close(client.send)
	if len(clients) == 0 {
		delete(cm.games, client.GameID)
	}
}

// SendMessage queues message for a single client
func (cm *ConnectionManager) SendMessage(client *Client, message any) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("component", "ws").Msg("failed to marshal message")
		return
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.enqueueLocked(client, data)
}

// Broadcast queues message for every client on gameID, in call order.
// A client whose buffer is full is dropped.
func (cm *ConnectionManager) Broadcast(gameID string, message domain.ServerMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("component", "ws").Str("game_id", gameID).Msg("failed to marshal message")
		return
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, client := range cm.games[gameID] {
		cm.enqueueLocked(client, data)
	}
}

func (cm *ConnectionManager) enqueueLocked(client *Client, data []byte) {
	if _, ok := cm.games[client.GameID][client.ID]; !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		log.Warn().Str("component", "ws").Str("game_id", client.GameID).Str("client_id", client.ID).Msg("send buffer full, dropping client")
		cm.removeLocked(client)
	}
}

// CloseGame disconnects every socket on gameID
func (cm *ConnectionManager) CloseGame(gameID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, client := range cm.games[gameID] {
		cm.removeLocked(client)
	}
}

func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, clients := range cm.games {
		for _, client := range clients {
			cm.removeLocked(client)
		}
	}
}

func (cm *ConnectionManager) ConnectionCount(gameID string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.games[gameID])
}

// writePump sends queued messages and keep-alive pings until send is closed
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
