package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Message is the WebSocket envelope format
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for matches
type Hub struct {
	// matchID -> playerID -> conn
	conns map[string]map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents one participant's WebSocket connection
type Connection struct {
	MatchID  string
	PlayerID string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	MatchID  string
	ToPlayer string // Empty means everyone in the match
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.MatchID] == nil {
				h.conns[conn.MatchID] = make(map[string]*Connection)
			}
			h.conns[conn.MatchID][conn.PlayerID] = conn
			h.mu.Unlock()
			logrus.WithFields(logrus.Fields{"match_id": conn.MatchID, "player": conn.PlayerID}).
				Debug("player connected to match stream")

		case conn := <-h.unregister:
			h.mu.Lock()
			if players, ok := h.conns[conn.MatchID]; ok {
				if existing, ok := players[conn.PlayerID]; ok && existing == conn {
					delete(players, conn.PlayerID)
					close(conn.Send)
					if len(players) == 0 {
						delete(h.conns, conn.MatchID)
					}
					logrus.WithFields(logrus.Fields{"match_id": conn.MatchID, "player": conn.PlayerID}).
						Debug("player disconnected from match stream")
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if players, ok := h.conns[msg.MatchID]; ok {
				if msg.ToPlayer != "" {
					if conn, ok := players[msg.ToPlayer]; ok {
						select {
						case conn.Send <- data:
						default:
							// Drop message if buffer full
						}
					}
				} else {
					for _, conn := range players {
						select {
						case conn.Send <- data:
						default:
						}
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToMatch sends an event to everyone in a match (implements service.Broadcaster)
func (h *Hub) BroadcastToMatch(matchID string, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		MatchID: matchID,
		Message: &Message{
			Event:   event,
			Payload: data,
		},
	}
}

// BroadcastToPlayer sends an event to one participant (implements service.Broadcaster)
func (h *Hub) BroadcastToPlayer(matchID, playerID string, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		MatchID:  matchID,
		ToPlayer: playerID,
		Message: &Message{
			Event:   event,
			Payload: data,
		},
	}
}

// DisconnectMatch closes every connection of a match (implements service.Broadcaster)
func (h *Hub) DisconnectMatch(matchID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if players, ok := h.conns[matchID]; ok {
		for _, conn := range players {
			close(conn.Send)
		}
		delete(h.conns, matchID)
	}
}
