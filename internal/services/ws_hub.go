package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"wardrobe-backend/internal/live"
	"wardrobe-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message in either direction.
type WSMessage struct {
	Type     string      `json:"type"`
	OutfitID string      `json:"outfit_id,omitempty"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// wsClient pairs a connection with a write lock; watch goroutines and the
// reader both send on the same connection.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections, one per user.
type WSHub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{clients: make(map[string]*wsClient)}
}

// Register registers a new WebSocket connection for a user, displacing any
// existing connection.
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.clients[userID]; exists {
		existing.conn.Close()
	}
	h.clients[userID] = &wsClient{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a user's WebSocket connection if it is still the one
// given.
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.clients[userID]; exists && client.conn == conn {
		client.conn.Close()
		delete(h.clients, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.clients[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(data); err != nil {
		h.Unregister(userID, client.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.clients[userID]
	return exists
}

// NotifyChange pushes a raw change event so the client can re-query the
// affected list.
func (h *WSHub) NotifyChange(userID string, ev live.Event) {
	msg := WSMessage{Type: "change", Data: ev}
	if err := h.SendToUser(userID, msg); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Failed to push change event")
	}
}

// NotifyOutfitRating pushes a recomputed outfit to its watcher.
func (h *WSHub) NotifyOutfitRating(userID string, outfit *models.Outfit) {
	msg := WSMessage{Type: "outfit_rating", OutfitID: outfit.ID, Data: outfit}
	if err := h.SendToUser(userID, msg); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Str("outfit_id", outfit.ID).
			Msg("Failed to push outfit rating")
	}
}
