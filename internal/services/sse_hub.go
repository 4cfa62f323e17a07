package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slidecraft/slidecraft-backend/internal/models"
)

// SSEHub manages Server-Sent Events connections for generation task progress
type SSEHub struct {
	// Map of entity keys to channels
	// Key format: "task:task_id" or "user:user_id"
	clients map[string]map[chan []byte]bool
	mu      sync.RWMutex
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]map[chan []byte]bool),
	}
}

// RegisterClient registers a new SSE client for an entity
func (h *SSEHub) RegisterClient(entityType, entityID string) chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := fmt.Sprintf("%s:%s", entityType, entityID)
	clientChan := make(chan []byte, 10) // Buffer size 10

	if h.clients[key] == nil {
		h.clients[key] = make(map[chan []byte]bool)
	}
	h.clients[key][clientChan] = true

	logrus.Infof("SSE client registered for %s (total clients: %d)", key, len(h.clients[key]))
	return clientChan
}

// UnregisterClient unregisters an SSE client
func (h *SSEHub) UnregisterClient(entityType, entityID string, clientChan chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := fmt.Sprintf("%s:%s", entityType, entityID)
	if h.clients[key] != nil {
		delete(h.clients[key], clientChan)
		close(clientChan)

		// Clean up empty maps
		if len(h.clients[key]) == 0 {
			delete(h.clients, key)
		}
	}

	logrus.Infof("SSE client unregistered for %s (remaining clients: %d)", key, len(h.clients[key]))
}

// BroadcastTaskUpdate broadcasts a task snapshot to all clients subscribed to
// the task and to the owning user's firehose.
func (h *SSEHub) BroadcastTaskUpdate(task *models.GenerationTask) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	taskKey := fmt.Sprintf("task:%s", task.ID)
	h.broadcastToKeyLocked(taskKey, task, h.clients[taskKey])

	if task.UserID != nil {
		userKey := fmt.Sprintf("user:%s", *task.UserID)
		h.broadcastToKeyLocked(userKey, task, h.clients[userKey])
	}
}

// broadcastToKeyLocked broadcasts the task to clients (assumes lock is already held)
func (h *SSEHub) broadcastToKeyLocked(key string, task *models.GenerationTask, clients map[chan []byte]bool) {
	if len(clients) == 0 {
		return
	}

	taskJSON, err := json.Marshal(task)
	if err != nil {
		logrus.Errorf("Failed to marshal task for SSE: %v", err)
		return
	}

	message := fmt.Sprintf("event: status\ndata: %s\n\n", string(taskJSON))

	// Send to all clients (non-blocking)
	for clientChan := range clients {
		select {
		case clientChan <- []byte(message):
		default:
			// Channel is full, skip this client
			logrus.Warnf("SSE client channel full, skipping: %s", key)
		}
	}
}

// GetClientCount returns the number of clients for a specific entity
func (h *SSEHub) GetClientCount(entityType, entityID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	key := fmt.Sprintf("%s:%s", entityType, entityID)
	if clients, exists := h.clients[key]; exists {
		return len(clients)
	}
	return 0
}

// SendHeartbeat sends a heartbeat message to keep connection alive
func (h *SSEHub) SendHeartbeat(entityType, entityID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	key := fmt.Sprintf("%s:%s", entityType, entityID)
	clients, exists := h.clients[key]
	if !exists {
		return
	}

	heartbeat := fmt.Sprintf(": heartbeat %s\n\n", time.Now().Format(time.RFC3339))
	for clientChan := range clients {
		select {
		case clientChan <- []byte(heartbeat):
		default:
			// Skip if channel is full
		}
	}
}
