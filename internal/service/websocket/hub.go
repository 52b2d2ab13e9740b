package websocket

import (
	"encoding/json"
	"sync"

	"cropdetector/internal/logger"

	"github.com/gorilla/websocket"
)

type subscription struct {
	conn    *websocket.Conn
	session string
}

// HubService fans state updates out to the viewers of each session. Only the
// latest pending update of a session is kept: a newer view replaces one that
// has not been sent yet, so the last view published always arrives.
type HubService struct {
	clients    map[*websocket.Conn]string
	pending    map[string][]byte
	pendingMu  sync.Mutex
	broadcast  chan struct{}
	register   chan subscription
	unregister chan *websocket.Conn
	stop       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]string),
		pending:    make(map[string][]byte),
		broadcast:  make(chan struct{}, 1),
		register:   make(chan subscription),
		unregister: make(chan *websocket.Conn),
		stop:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *HubService) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mutex.Lock()
			h.clients[sub.conn] = sub.session
			h.mutex.Unlock()
			h.logger.Info("Viewer connected for session %s. Total: %d", logger.SessionRef(sub.session), h.GetClientCount())

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", h.GetClientCount())

		case <-h.broadcast:
			h.flush()

		case <-h.stop:
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
			}
			h.clients = make(map[*websocket.Conn]string)
			h.mutex.Unlock()
			return
		}
	}
}

// flush sends every pending update to the viewers of its session.
func (h *HubService) flush() {
	h.pendingMu.Lock()
	updates := h.pending
	h.pending = make(map[string][]byte)
	h.pendingMu.Unlock()

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn, session := range h.clients {
		data, ok := updates[session]
		if !ok {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Error("Error sending message: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// Stop ends Run and closes every viewer connection.
func (h *HubService) Stop() {
	close(h.stop)
}

func (h *HubService) Register(conn *websocket.Conn, session string) {
	select {
	case h.register <- subscription{conn: conn, session: session}:
	case <-h.stop:
		conn.Close()
	}
}

func (h *HubService) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.stop:
	}
}

// Publish encodes v as JSON and queues it for the viewers of session,
// replacing any update of that session still waiting to be sent.
func (h *HubService) Publish(session string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Error encoding update for session %s: %v", logger.SessionRef(session), err)
		return
	}

	h.pendingMu.Lock()
	h.pending[session] = data
	h.pendingMu.Unlock()

	select {
	case h.broadcast <- struct{}{}:
	default:
	}
}

// Pending reports how many sessions have an update waiting to be sent.
func (h *HubService) Pending() int {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	return len(h.pending)
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
