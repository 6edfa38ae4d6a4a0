package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"zipto/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Wire events. The client emits join requests and listens for message
// deliveries pushed outside the request/response cycle.
const (
	EventHello            = "auth:hello"
	EventJoinConversation = "support:join_conversation"
	EventNewMessage       = "conversation:new_message"
)

const (
	dialTimeout    = 10 * time.Second
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Frame is the JSON envelope for every websocket message
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type helloPayload struct {
	SessionID string `json:"sessionId,omitempty"`
}

type joinPayload struct {
	ConversationID string `json:"conversationId"`
}

// MessageHandler receives pushed conversation messages
type MessageHandler func(models.ConversationMessageEvent)

// Socket is the push channel client. It connects lazily on the first
// join, reconnects with capped backoff, and re-asserts the conversation
// subscription after every reconnect.
type Socket struct {
	url       string
	sessionID func() string // Read at connect time, rotates on chat reset
	logger    zerolog.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	handler MessageHandler
	joined  string // Conversation to (re)join on connect
	running bool
	closed  bool
	backoff time.Duration
}

// New creates a push channel client for the given websocket URL.
// sessionID is called on every connect to pick up rotations.
func New(url string, sessionID func() string, logger zerolog.Logger) *Socket {
	return &Socket{
		url:       url,
		sessionID: sessionID,
		logger:    logger,
		backoff:   initialBackoff,
	}
}

// OnMessage registers the handler invoked for every pushed conversation
// message. Register before joining a conversation.
func (s *Socket) OnMessage(handler MessageHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// JoinConversation subscribes to push deliveries for a conversation.
// The call is idempotent and cheap to repeat; it is fire-and-forget
// from the caller's perspective.
func (s *Socket) JoinConversation(conversationID string) {
	if conversationID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.joined = conversationID

	if s.conn != nil {
		s.writeFrameLocked(EventJoinConversation, joinPayload{ConversationID: conversationID})
		return
	}

	if !s.running {
		s.running = true
		go s.run()
	}
}

// Close stops the connection manager and drops the connection
func (s *Socket) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// run owns the connection lifecycle: dial, subscribe, read until the
// connection drops, back off, repeat
func (s *Socket) run() {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		conn, err := s.dial()
		if err != nil {
			s.logger.Warn().Err(err).Msg("Push channel connect failed")
			if !s.sleepBackoff() {
				return
			}
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.conn = conn
		s.backoff = initialBackoff

		// Identify ourselves, then re-assert the subscription
		s.writeFrameLocked(EventHello, helloPayload{SessionID: s.sessionID()})
		if s.joined != "" {
			s.writeFrameLocked(EventJoinConversation, joinPayload{ConversationID: s.joined})
		}
		s.mu.Unlock()

		s.logger.Info().Msg("Push channel connected")
		s.readLoop(conn)

		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		closed := s.closed
		s.mu.Unlock()
		_ = conn.Close()

		if closed {
			return
		}
		s.logger.Warn().Msg("Push channel disconnected, reconnecting")
		if !s.sleepBackoff() {
			return
		}
	}
}

func (s *Socket) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(s.url, nil)
	return conn, err
}

// readLoop dispatches pushed frames until the connection fails
func (s *Socket) readLoop(conn *websocket.Conn) {
	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		if frame.Event != EventNewMessage {
			continue
		}

		var event models.ConversationMessageEvent
		if err := json.Unmarshal(frame.Data, &event); err != nil {
			s.logger.Warn().Err(err).Msg("Malformed push event payload")
			continue
		}

		s.mu.Lock()
		handler := s.handler
		s.mu.Unlock()

		if handler != nil {
			handler(event)
		}
	}
}

// writeFrameLocked sends one frame; the caller holds s.mu, which
// serializes writes on the connection
func (s *Socket) writeFrameLocked(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal push frame")
		return
	}

	if err := s.conn.WriteJSON(Frame{Event: event, Data: data}); err != nil {
		s.logger.Warn().Err(err).Str("event", event).Msg("Push channel write failed")
	}
}

// sleepBackoff waits before the next reconnect attempt, doubling the
// delay up to a cap. Returns false once the socket is closed.
func (s *Socket) sleepBackoff() bool {
	s.mu.Lock()
	delay := s.backoff
	s.backoff *= 2
	if s.backoff > maxBackoff {
		s.backoff = maxBackoff
	}
	closed := s.closed
	s.mu.Unlock()

	if closed {
		return false
	}
	time.Sleep(delay)

	s.mu.Lock()
	closed = s.closed
	s.mu.Unlock()
	return !closed
}
