package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zipto/internal/models"
	"zipto/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	e := echo.New()
	e.GET("/ws", hub.Handler())
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(realtime.Frame{Event: event, Data: data}))
}

func TestHub_PublishReachesSubscriber(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialHub(t, hub)

	sendFrame(t, conn, realtime.EventHello, map[string]string{"sessionId": "session-1"})
	sendFrame(t, conn, realtime.EventJoinConversation, map[string]string{"conversationId": "conv-1"})

	// The join is processed asynchronously by the serve loop
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		for client := range hub.clients {
			client.mu.Lock()
			joined := client.conversation
			client.mu.Unlock()
			if joined == "conv-1" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	ts := int64(1000)
	hub.Publish("conv-1", models.HistoryRecord{
		MessageID: "m1",
		Role:      "assistant",
		Content:   "On its way!",
		Timestamp: &ts,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var frame realtime.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, realtime.EventNewMessage, frame.Event)

	var event models.ConversationMessageEvent
	require.NoError(t, json.Unmarshal(frame.Data, &event))
	assert.Equal(t, "conv-1", event.ConversationID)
	require.NotNil(t, event.Message)
	assert.Equal(t, "m1", event.Message.MessageID)
	assert.Equal(t, "On its way!", event.Message.Content)
}

func TestHub_PublishSkipsOtherConversations(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialHub(t, hub)

	sendFrame(t, conn, realtime.EventJoinConversation, map[string]string{"conversationId": "conv-1"})

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		for client := range hub.clients {
			client.mu.Lock()
			joined := client.conversation
			client.mu.Unlock()
			if joined != "" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	hub.Publish("conv-other", models.HistoryRecord{MessageID: "m1", Content: "not yours"})
	hub.Publish("conv-1", models.HistoryRecord{MessageID: "m2", Content: "yours"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var frame realtime.Frame
	require.NoError(t, conn.ReadJSON(&frame))

	var event models.ConversationMessageEvent
	require.NoError(t, json.Unmarshal(frame.Data, &event))
	require.NotNil(t, event.Message)
	assert.Equal(t, "m2", event.Message.MessageID)
}

func TestHub_UnknownEventsIgnored(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialHub(t, hub)

	sendFrame(t, conn, "totally:unknown", map[string]string{"x": "y"})
	sendFrame(t, conn, realtime.EventJoinConversation, map[string]string{"conversationId": "conv-1"})

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		for client := range hub.clients {
			client.mu.Lock()
			joined := client.conversation
			client.mu.Unlock()
			if joined == "conv-1" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}
