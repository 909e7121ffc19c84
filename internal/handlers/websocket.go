package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"wardrobe-backend/internal/live"
	"wardrobe-backend/internal/models"
	"wardrobe-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients connect from app webviews
	},
}

// WebSocketHandler handles WebSocket connections. Clients receive change
// events for their own records and can hold outfit watches that stream
// rating recomputations.
type WebSocketHandler struct {
	hub         *services.WSHub
	userService *services.UserService
	sync        *services.RatingSynchronizer
	bus         *live.Bus
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	userService *services.UserService,
	sync *services.RatingSynchronizer,
	bus *live.Bus,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		userService: userService,
		sync:        sync,
		bus:         bus,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.userService.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	// Everything spawned for this connection dies with it.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.forwardChanges(ctx, userID)

	watches := newWatchSet()
	defer watches.cancelAll()

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(userID, "Invalid message format")
			continue
		}

		if err := h.handleMessage(ctx, userID, msg, watches); err != nil {
			log.Error().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to handle message")
			h.sendError(userID, err.Error())
		}
	}
}

// forwardChanges relays the user's own change events so list screens can
// re-query without polling.
func (h *WebSocketHandler) forwardChanges(ctx context.Context, userID string) {
	events := h.bus.Subscribe(ctx)
	for ev := range events {
		if ev.UserID != userID {
			continue
		}
		h.hub.NotifyChange(userID, ev)
	}
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(ctx context.Context, userID string, msg services.WSMessage, watches *watchSet) error {
	switch msg.Type {
	case "watch_outfit":
		return h.handleWatchOutfit(ctx, userID, msg, watches)
	case "unwatch_outfit":
		watches.cancel(msg.OutfitID)
		return nil
	default:
		return h.sendError(userID, "Unknown message type")
	}
}

// handleWatchOutfit starts a rating-sync subscription for an outfit. The
// watch re-fires on every mutation of the outfit's garments until the
// client unwatches or disconnects.
func (h *WebSocketHandler) handleWatchOutfit(ctx context.Context, userID string, msg services.WSMessage, watches *watchSet) error {
	if msg.OutfitID == "" {
		return h.sendError(userID, "outfit_id is required")
	}

	watchCtx, ok := watches.add(ctx, msg.OutfitID)
	if !ok {
		// Already watching; the existing subscription keeps streaming.
		return nil
	}

	go func() {
		defer watches.cancel(msg.OutfitID)
		err := h.sync.Watch(watchCtx, userID, msg.OutfitID, func(outfit *models.Outfit) {
			h.hub.NotifyOutfitRating(userID, outfit)
		})
		if err != nil && watchCtx.Err() == nil {
			log.Error().Err(err).Str("user_id", userID).Str("outfit_id", msg.OutfitID).
				Msg("Outfit watch terminated")
			h.sendError(userID, "watch failed")
		}
	}()

	return nil
}

func (h *WebSocketHandler) sendError(userID, message string) error {
	return h.hub.SendToUser(userID, services.WSMessage{Type: "error", Message: message})
}

// watchSet tracks the active outfit watches of one connection.
type watchSet struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func newWatchSet() *watchSet {
	return &watchSet{cancels: make(map[string]context.CancelFunc)}
}

// add creates a cancellable child context for an outfit watch. Returns
// ok=false if the outfit is already being watched.
func (s *watchSet) add(ctx context.Context, outfitID string) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cancels[outfitID]; exists {
		return nil, false
	}
	watchCtx, cancel := context.WithCancel(ctx)
	s.cancels[outfitID] = cancel
	return watchCtx, true
}

func (s *watchSet) cancel(outfitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, exists := s.cancels[outfitID]; exists {
		cancel()
		delete(s.cancels, outfitID)
	}
}

func (s *watchSet) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
}
