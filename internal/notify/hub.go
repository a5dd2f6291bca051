package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

// Message is one frame sent to a websocket subscriber
type Message struct {
	Type  string `json:"type"`
	Toast *Toast `json:"toast,omitempty"`
	ID    string `json:"id,omitempty"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan Message
}

// Hub fans toast events out to connected websocket clients
type Hub struct {
	mu       sync.Mutex
	subs     map[*subscriber]struct{}
	notifier *Notifier
}

// NewHub creates a hub and registers it as a sink of the notifier
func NewHub(notifier *Notifier) *Hub {
	h := &Hub{
		subs:     make(map[*subscriber]struct{}),
		notifier: notifier,
	}
	notifier.AddSink(h)
	return h
}

// ToastAdded implements Sink
func (h *Hub) ToastAdded(t Toast) {
	h.broadcast(Message{Type: "toast", Toast: &t})
}

// ToastDismissed implements Sink
func (h *Hub) ToastDismissed(id string) {
	h.broadcast(Message{Type: "dismiss", ID: id})
}

// Subscribers returns the number of connected clients
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.send <- msg:
		default:
			slog.Warn("dropping slow notification subscriber")
			delete(h.subs, sub)
			close(sub.send)
		}
	}
}

// ServeHTTP upgrades the request and streams toast events until the client leaves.
// Active toasts are replayed on connect.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}

	sub := &subscriber{conn: conn, send: make(chan Message, sendBuffer)}
	for _, t := range h.notifier.Active() {
		t := t
		sub.send <- Message{Type: "toast", Toast: &t}
		if len(sub.send) == sendBuffer {
			break
		}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	slog.Debug("notification websocket connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go h.readLoop(sub, done)
	h.writeLoop(sub, done)

	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
	h.mu.Unlock()
	conn.Close()

	slog.Debug("notification websocket disconnected", "remote", r.RemoteAddr)
}

// readLoop consumes client frames so close messages are processed
func (h *Hub) readLoop(sub *subscriber, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(sub *subscriber, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg, ok := <-sub.send:
			if !ok {
				return
			}
			if err := sendMessage(sub.conn, msg); err != nil {
				slog.Debug("websocket write error", "error", err)
				return
			}
		}
	}
}

func sendMessage(conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
