package websocket

import (
	"context"
	"sync"
	"time"

	"facegreeter/internal/logger"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Conn is the subset of *websocket.Conn the hub needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// HubService fans greeting events out to connected browser clients.
type HubService struct {
	clients    map[Conn]bool
	broadcast  chan []byte
	register   chan Conn
	unregister chan Conn
	done       chan struct{} // closed when Run returns
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[Conn]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan Conn),
		unregister: make(chan Conn),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register, unregister and broadcast requests until ctx is cancelled.
func (h *HubService) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Client connected. Total: %d", count)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			for client := range h.GetClients() {
				client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending message: %v", err)
					h.remove(client)
				}
			}
		}
	}
}

func (h *HubService) remove(client Conn) {
	h.mutex.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		client.Close()
	}
	count := len(h.clients)
	h.mutex.Unlock()

	if ok {
		h.logger.Info("Client disconnected. Total: %d", count)
	}
}

func (h *HubService) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

// Register adds a client. Once the hub has stopped the client is closed instead.
func (h *HubService) Register(client Conn) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister removes a client. It returns immediately once the hub has stopped.
func (h *HubService) Unregister(client Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues message for all clients. It never blocks the caller; when the
// queue is full the message is dropped.
func (h *HubService) Broadcast(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		h.logger.Warning("Broadcast queue full, dropping message")
		return false
	}
}

func (h *HubService) GetClients() map[Conn]bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make(map[Conn]bool, len(h.clients))
	for k, v := range h.clients {
		clients[k] = v
	}
	return clients
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
