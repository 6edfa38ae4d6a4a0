package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"zipto/internal/models"
	"zipto/internal/realtime"
	"zipto/internal/storage"

	"github.com/rs/zerolog"
)

// roleInternalNote marks operator-only annotations pushed over the
// channel; they are never shown to the customer
const roleInternalNote = "internal_note"

// Transport is the HTTP surface the store depends on
type Transport interface {
	SendMessage(ctx context.Context, request models.ChatRequest) models.ChatResponse
	FetchConversationMessages(ctx context.Context, conversationID string, limit int) []models.HistoryRecord
}

// Channel is the push channel surface the store depends on
type Channel interface {
	OnMessage(handler realtime.MessageHandler)
	JoinConversation(conversationID string)
}

// Store is the chat conversation state engine. It owns the message log
// and the two identifiers, merging messages from the optimistic local
// insert, the HTTP reply, the push channel and the history fetch into
// one ordered, deduplicated, durable log. All mutation goes through its
// operations; the mutex is the single serialization point that makes
// the dedup check safe.
type Store struct {
	api     Transport
	channel Channel
	storage storage.Store
	logger  zerolog.Logger

	historyLimit int

	mu             sync.Mutex
	messages       []models.ChatMessage
	sessionID      string
	conversationID string
	lastError      string
	sending        bool
	open           bool
	lastSubscribed string
	started        bool
}

// New creates a chat store, restoring the session id, conversation id
// and message log from storage. Call Start to attach the push channel
// and hydrate history.
func New(api Transport, channel Channel, store storage.Store, historyLimit int, logger zerolog.Logger) *Store {
	s := &Store{
		api:          api,
		channel:      channel,
		storage:      store,
		logger:       logger,
		historyLimit: historyLimit,
	}

	s.sessionID = s.loadSessionID()
	s.conversationID = s.loadConversationID()
	s.messages = storage.LoadMessages(store, logger)

	return s
}

// Start registers the push handler and, when a conversation already
// exists from a previous run, subscribes to its channel and hydrates
// history. It returns only when hydration has completed, so callers
// can await full readiness. Start is idempotent.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true

	s.channel.OnMessage(s.handlePush)

	conversationID := s.conversationID
	needHydration := conversationID != "" && len(s.messages) == 0

	if conversationID != "" && conversationID != s.lastSubscribed {
		s.lastSubscribed = conversationID
		s.channel.JoinConversation(conversationID)
	}
	s.mu.Unlock()

	if !needHydration {
		return
	}
	s.hydrate(ctx, conversationID)
}

// hydrate seeds an empty log from the backend's persisted history. The
// fetch is best-effort: on failure the log simply stays empty. It runs
// only when the local log is empty, so a partial remote fetch can never
// overwrite messages already reconciled locally.
func (s *Store) hydrate(ctx context.Context, conversationID string) {
	records := s.api.FetchConversationMessages(ctx, conversationID, s.historyLimit)
	if len(records) == 0 {
		return
	}

	var seed []models.ChatMessage
	for _, record := range records {
		message := messageFromRecord(record)
		if message.Content == "" {
			continue
		}
		seed = append(seed, message)
	}
	if len(seed) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A send may have raced the fetch; the guard still holds
	if len(s.messages) > 0 {
		return
	}

	s.messages = seed
	storage.SaveMessages(s.storage, s.messages, s.logger)
	s.logger.Info().Int("count", len(seed)).Str("conversation_id", conversationID).Msg("Hydrated conversation history")
}

// handlePush reconciles a message delivered over the push channel.
// Events for other conversations (including ones from a stale
// subscription left behind by a reset) and operator-only notes are
// dropped.
func (s *Store) handlePush(event models.ConversationMessageEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conversationID == "" || event.ConversationID != s.conversationID {
		return
	}
	if event.Message == nil || event.Message.Role == roleInternalNote {
		return
	}

	message := messageFromRecord(*event.Message)
	if message.Content == "" {
		return
	}

	s.appendLocked(message)
}

// Open shows the chat widget
func (s *Store) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
}

// Close hides the chat widget
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

// IsOpen reports whether the widget is visible
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Messages returns a copy of the current message log
func (s *Store) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

// SessionID returns the current session identifier
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// ConversationID returns the backend conversation id, empty until the
// first successful exchange
func (s *Store) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// LastError returns the user-facing message for the most recent failed
// send, empty when the last send succeeded
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Sending reports whether a send is in flight
func (s *Store) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// SendMessage posts one user message and reconciles the reply. The
// user's message appears in the log immediately, before the network
// round trip. Empty input and overlapping sends are rejected silently;
// failures become state (lastError plus an error-marked reply), never
// panics or returned errors.
func (s *Store) SendMessage(ctx context.Context, content string, chatContext models.ChatContext) {
	if strings.TrimSpace(content) == "" {
		return
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return
	}

	now := time.Now().UnixMilli()
	s.appendLocked(models.ChatMessage{
		ID:        fmt.Sprintf("user-%d", now),
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: now,
	})
	s.sending = true
	s.lastError = ""

	request := models.ChatRequest{
		SessionID:      s.sessionID,
		UserID:         nil, // No authenticated-user linkage in this flow
		Message:        content,
		Context:        chatContext,
		ConversationID: s.conversationID,
	}
	hadConversation := s.conversationID != ""
	s.mu.Unlock()

	// Blocking round trip, lock released; the transport owns the timeout
	response := s.api.SendMessage(ctx, request)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.sending = false }()

	replyTime := time.Now().UnixMilli()
	replyID := response.MessageID
	if replyID == "" {
		replyID = fmt.Sprintf("assistant-%d", replyTime)
	}

	s.appendLocked(models.ChatMessage{
		ID:               replyID,
		Role:             models.RoleAssistant,
		Content:          response.ReplyText,
		Timestamp:        replyTime,
		BackendMessageID: response.MessageID,
		IsError:          response.Failed,
	})

	if response.Failed {
		s.lastError = response.ReplyText
		return
	}

	if response.ConversationID != "" && !hadConversation {
		s.setConversationIDLocked(response.ConversationID)
	}
}

// Retry replays the most recent user message. Error-marked messages
// after it are removed first so the failed exchange disappears once the
// retry resolves. No-op when the log holds no user message.
func (s *Store) Retry(ctx context.Context, chatContext models.ChatContext) {
	s.mu.Lock()

	var lastUser *models.ChatMessage
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == models.RoleUser {
			lastUser = &s.messages[i]
			break
		}
	}
	if lastUser == nil {
		s.mu.Unlock()
		return
	}

	content := lastUser.Content
	cutoff := lastUser.Timestamp

	filtered := s.messages[:0:0]
	for _, message := range s.messages {
		if message.Timestamp <= cutoff || !message.IsError {
			filtered = append(filtered, message)
		}
	}
	s.messages = filtered
	s.lastError = ""
	storage.SaveMessages(s.storage, s.messages, s.logger)
	s.mu.Unlock()

	s.SendMessage(ctx, content, chatContext)
}

// Reset clears the conversation: empty log, fresh session id, no
// conversation id. The push channel is left subscribed to the old
// conversation; events from the stale subscription no longer match the
// current conversation id and are filtered by the push handler.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionID = newSessionID()
	if err := s.storage.Set(storage.KeySessionID, s.sessionID); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist session id")
	}

	s.messages = nil
	if err := s.storage.Delete(storage.KeyMessages); err != nil {
		s.logger.Error().Err(err).Msg("Failed to clear stored messages")
	}

	s.conversationID = ""
	if err := s.storage.Delete(storage.KeyConversationID); err != nil {
		s.logger.Error().Err(err).Msg("Failed to clear conversation id")
	}

	s.lastError = ""
	s.sending = false
}
