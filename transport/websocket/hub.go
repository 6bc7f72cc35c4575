package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rmarchese/polyfit/game/engine"
	"github.com/rmarchese/polyfit/game/service"
)

const (
	// writeTimeout bounds a single frame write to a subscriber.
	writeTimeout = 10 * time.Second

	// pongTimeout is how long a connection may go silent before it is
	// considered dead. pingInterval must stay below it.
	pongTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second

	// readLimit caps inbound message size. The protocol is push-only, so
	// anything beyond a pong is noise.
	readLimit = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the UI origin before exposing this publicly
		return true
	},
}

// Frame is the JSON payload pushed to subscribers. Event names the kind of
// update: "board_update" carries a full snapshot in GameState, the piece
// events ("piece_placed", "piece_removed", "piece_rotated", "piece_moved")
// and "victory" carry just the piece and message so clients can animate
// without diffing snapshots.
type Frame struct {
	SessionID string            `json:"session_id"`
	Event     string            `json:"event"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	PieceID   string            `json:"piece_id,omitempty"`
	Position  *engine.Position  `json:"position,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// subscriber is one WebSocket connection watching one session.
type subscriber struct {
	conn      *websocket.Conn
	out       chan []byte
	sessionID string
}

type queued struct {
	sessionID string
	payload   []byte
}

// Hub fans board updates out to the subscribers of each session. Broadcasts
// go through a bounded queue drained by Run, so a burst of board operations
// never blocks the HTTP handlers that produce them.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*subscriber]struct{}
	queue chan queued
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*subscriber]struct{}),
		queue: make(chan queued, engine.WebSocketBufferSize),
	}
}

// Run drains the broadcast queue. It blocks until the queue is closed, so
// callers start it on its own goroutine.
func (h *Hub) Run() {
	for q := range h.queue {
		h.fanOut(q.sessionID, q.payload)
	}
}

// BroadcastToSession pushes a full board snapshot to everyone watching the
// session.
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.push(Frame{
		SessionID: sessionID,
		Event:     "board_update",
		GameState: state,
	})
}

// BroadcastEvents pushes one frame per game event from a board operation.
// Successful operations yield a single piece event, plus a "victory" frame
// when the move completed the board.
func (h *Hub) BroadcastEvents(sessionID string, events []service.GameEvent) {
	for _, ev := range events {
		frame := Frame{
			SessionID: sessionID,
			Event:     eventName(ev.Type),
			PieceID:   ev.PieceID,
			Message:   ev.Message,
		}
		if ev.Type == engine.ActionPlace || ev.Type == engine.ActionMove {
			pos := ev.Position
			frame.Position = &pos
		}
		h.push(frame)
	}
}

// eventName maps a game event type to its wire name.
func eventName(eventType string) string {
	switch eventType {
	case engine.ActionPlace:
		return "piece_placed"
	case engine.ActionRemove:
		return "piece_removed"
	case engine.ActionRotate:
		return "piece_rotated"
	case engine.ActionMove:
		return "piece_moved"
	default:
		return eventType
	}
}

// push marshals a frame and enqueues it. When the queue is full the frame is
// dropped rather than blocking the caller; subscribers recover on the next
// board_update.
func (h *Hub) push(frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		log.Printf("Failed to marshal %s frame: %v", frame.Event, err)
		return
	}

	select {
	case h.queue <- queued{sessionID: frame.SessionID, payload: payload}:
	default:
		log.Printf("Broadcast queue full, dropping %s frame for session %s", frame.Event, frame.SessionID)
	}
}

func (h *Hub) fanOut(sessionID string, payload []byte) {
	h.mu.RLock()
	var stalled []*subscriber
	for sub := range h.rooms[sessionID] {
		select {
		case sub.out <- payload:
		default:
			stalled = append(stalled, sub)
		}
	}
	h.mu.RUnlock()

	// A subscriber with a full outbound buffer is not keeping up. Drop it
	// instead of letting it stall the whole session.
	for _, sub := range stalled {
		h.detach(sub)
	}
}

// SubscriberCount reports how many connections are watching a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

func (h *Hub) attach(sub *subscriber) {
	h.mu.Lock()
	room := h.rooms[sub.sessionID]
	if room == nil {
		room = make(map[*subscriber]struct{})
		h.rooms[sub.sessionID] = room
	}
	room[sub] = struct{}{}
	watching := len(room)
	h.mu.Unlock()

	log.Printf("WebSocket subscriber joined session %s (%d watching)", sub.sessionID, watching)
}

// detach removes a subscriber and closes its outbound channel. Safe to call
// from both the read loop and fanOut; only the first call does anything.
func (h *Hub) detach(sub *subscriber) {
	h.mu.Lock()
	room := h.rooms[sub.sessionID]
	_, member := room[sub]
	if member {
		delete(room, sub)
		close(sub.out)
		if len(room) == 0 {
			delete(h.rooms, sub.sessionID)
		}
	}
	watching := len(room)
	h.mu.Unlock()

	if member {
		log.Printf("WebSocket subscriber left session %s (%d watching)", sub.sessionID, watching)
	}
}

// ServeWS upgrades the HTTP request and subscribes the connection to the
// session's updates.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		conn:      conn,
		out:       make(chan []byte, engine.WebSocketBufferSize),
		sessionID: sessionID,
	}
	h.attach(sub)

	go h.readLoop(sub)
	go writeLoop(sub)
}

// readLoop keeps the connection alive via pong handling and detaches the
// subscriber when it drops. Inbound messages are discarded.
func (h *Hub) readLoop(sub *subscriber) {
	defer func() {
		h.detach(sub)
		sub.conn.Close()
	}()

	sub.conn.SetReadLimit(readLimit)
	sub.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
	}
}

// writeLoop sends queued frames and periodic pings to one subscriber.
func writeLoop(sub *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case payload, open := <-sub.out:
			sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !open {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
