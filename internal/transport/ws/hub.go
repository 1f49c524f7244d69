package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for live matches
type Hub struct {
	// matchID -> playerID -> conn
	conns map[string]map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *unregisterReq
	broadcast  chan *BroadcastMessage
	evict      chan string
}

// unregisterReq carries the departing connection and a reply reporting
// whether it was still the player's current connection
type unregisterReq struct {
	conn    *Connection
	current chan bool
}

// Connection represents one player's WebSocket connection to a match
type Connection struct {
	MatchID  string
	PlayerID string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	MatchID  string
	ToPlayer string // Empty means both players
	Message  *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *unregisterReq),
		broadcast:  make(chan *BroadcastMessage, 256),
		evict:      make(chan string),
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
			// a reconnect supersedes any lingering connection
			if old, ok := h.conns[conn.MatchID][conn.PlayerID]; ok {
				close(old.Send)
			}
			h.conns[conn.MatchID][conn.PlayerID] = conn
			log.Printf("Player %s connected to match %s", conn.PlayerID, conn.MatchID)
			h.mu.Unlock()

		case req := <-h.unregister:
			conn := req.conn
			current := false
			h.mu.Lock()
			if players, ok := h.conns[conn.MatchID]; ok {
				if existing, ok := players[conn.PlayerID]; ok && existing == conn {
					delete(players, conn.PlayerID)
					close(conn.Send)
					current = true
					log.Printf("Player %s disconnected from match %s", conn.PlayerID, conn.MatchID)
				}
				if len(players) == 0 {
					delete(h.conns, conn.MatchID)
				}
			}
			h.mu.Unlock()
			req.current <- current

		case matchID := <-h.evict:
			h.mu.Lock()
			for _, conn := range h.conns[matchID] {
				close(conn.Send)
			}
			delete(h.conns, matchID)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if players, ok := h.conns[msg.MatchID]; ok {
				for pid, conn := range players {
					if msg.ToPlayer != "" && pid != msg.ToPlayer {
						continue
					}
					select {
					case conn.Send <- data:
					default:
						// Drop message if buffer full
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

// Unregister removes a connection. Reports whether it was still the
// player's current one; a connection superseded by a reconnect returns
// false so its teardown is not mistaken for the player leaving.
func (h *Hub) Unregister(conn *Connection) bool {
	req := &unregisterReq{conn: conn, current: make(chan bool, 1)}
	h.unregister <- req
	return <-req.current
}

// BroadcastToPlayer sends a message to one participant (implements battle.Broadcaster)
func (h *Hub) BroadcastToPlayer(matchID, playerID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		MatchID:  matchID,
		ToPlayer: playerID,
		Message: &Message{
			Type:    msgType,
			Payload: data,
		},
	}
}

// BroadcastToMatch sends a message to both participants (implements battle.Broadcaster)
func (h *Hub) BroadcastToMatch(matchID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		MatchID: matchID,
		Message: &Message{
			Type:    msgType,
			Payload: data,
		},
	}
}

// DisconnectMatch drops every connection for a finished match (implements battle.Broadcaster)
func (h *Hub) DisconnectMatch(matchID string) {
	h.evict <- matchID
}
