package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"zipto/internal/models"
	"zipto/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Hub tracks websocket subscribers and fans pushed conversation
// messages out to them
type Hub struct {
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	mu           sync.Mutex // Serializes writes on the connection
	conn         *websocket.Conn
	sessionID    string
	conversation string
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true }, // Local dev tool
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// Handler upgrades the request and serves the client until it
// disconnects
func (h *Hub) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}

		client := &hubClient{conn: conn}
		h.mu.Lock()
		h.clients[client] = struct{}{}
		h.mu.Unlock()

		h.logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("Push client connected")
		h.serve(client)

		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		_ = conn.Close()

		return nil
	}
}

func (h *Hub) serve(client *hubClient) {
	for {
		var frame realtime.Frame
		if err := client.conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Event {
		case realtime.EventHello:
			var hello struct {
				SessionID string `json:"sessionId"`
			}
			if err := json.Unmarshal(frame.Data, &hello); err != nil {
				continue
			}
			client.mu.Lock()
			client.sessionID = hello.SessionID
			client.mu.Unlock()

		case realtime.EventJoinConversation:
			var join struct {
				ConversationID string `json:"conversationId"`
			}
			if err := json.Unmarshal(frame.Data, &join); err != nil {
				continue
			}
			client.mu.Lock()
			client.conversation = join.ConversationID
			client.mu.Unlock()
			h.logger.Info().Str("conversation_id", join.ConversationID).Msg("Push client joined conversation")

		default:
			// Unknown events are ignored so older clients keep working
		}
	}
}

// Publish pushes a conversation message to every subscriber of that
// conversation
func (h *Hub) Publish(conversationID string, record models.HistoryRecord) {
	event := models.ConversationMessageEvent{
		ConversationID: conversationID,
		Message:        &record,
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal push event")
		return
	}
	frame := realtime.Frame{Event: realtime.EventNewMessage, Data: data}

	h.mu.Lock()
	targets := make([]*hubClient, 0, len(h.clients))
	for client := range h.clients {
		targets = append(targets, client)
	}
	h.mu.Unlock()

	for _, client := range targets {
		client.mu.Lock()
		joined := client.conversation
		if joined == conversationID {
			if err := client.conn.WriteJSON(frame); err != nil {
				h.logger.Warn().Err(err).Msg("Push write failed")
			}
		}
		client.mu.Unlock()
	}
}
