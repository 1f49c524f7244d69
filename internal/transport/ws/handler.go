package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"triviamon/internal/battle"
	"triviamon/internal/model"
	"triviamon/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// clientMessage is the inbound envelope from a player
type clientMessage struct {
	Type        string       `json:"type"`
	TurnNumber  int          `json:"turnNumber"`
	AnswerIndex *int         `json:"answerIndex"`
	Action      model.Action `json:"action"`
}

// Handler handles WebSocket connections
type Handler struct {
	hub     *Hub
	manager *battle.Manager
	authSvc *service.AuthService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, manager *battle.Manager, authSvc *service.AuthService) *Handler {
	return &Handler{
		hub:     hub,
		manager: manager,
		authSvc: authSvc,
	}
}

// MatchWS handles GET /v1/ws/matches/{id}
func (h *Handler) MatchWS(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidatePlayerToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		MatchID:  matchID,
		PlayerID: claims.PlayerID,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}

	h.hub.Register(conn)

	if err := h.manager.PlayerConnected(matchID, claims.PlayerID); err != nil {
		log.Printf("Player %s rejected from match %s: %v", claims.PlayerID, matchID, err)
		h.hub.Unregister(conn)
		wsConn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(writeWait))
		wsConn.Close()
		return
	}

	log.Printf("Player %s joined match %s via WebSocket", claims.PlayerID, matchID)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		// a pump torn down because the player reconnected must not report
		// a disconnect over the new connection
		if h.hub.Unregister(conn) {
			h.manager.PlayerDisconnected(conn.MatchID, conn.PlayerID)
		}
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		h.handleMessage(conn, data)
	}
}

func (h *Handler) handleMessage(conn *Connection, data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(conn, "malformed message")
		return
	}

	switch msg.Type {
	case "submit_action":
		answerIndex := -1
		if msg.AnswerIndex != nil {
			answerIndex = *msg.AnswerIndex
		}
		err := h.manager.SubmitAction(conn.MatchID, conn.PlayerID, msg.TurnNumber, answerIndex, msg.Action)
		if err != nil && !errors.Is(err, battle.ErrDuplicateSubmission) {
			h.sendError(conn, err.Error())
		}

	case "forfeit":
		if err := h.manager.Forfeit(conn.MatchID, conn.PlayerID); err != nil {
			h.sendError(conn, err.Error())
		}

	default:
		h.sendError(conn, "unknown message type")
	}
}

func (h *Handler) sendError(conn *Connection, message string) {
	h.hub.BroadcastToPlayer(conn.MatchID, conn.PlayerID, battle.EvtError, map[string]string{
		"message": message,
	})
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
