package storage

import (
	"encoding/json"

	"zipto/internal/models"

	"github.com/rs/zerolog"
)

// Keys for durable chat state, namespaced to this application
const (
	KeySessionID      = "zipto-chat-session"
	KeyConversationID = "zipto-chat-conversation"
	KeyMessages       = "zipto-chat-messages"
)

// Store is durable string-valued key-value storage that survives
// application restarts
type Store interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// SaveMessages mirrors the message log into the store. Persistence is
// best-effort: a failed write is logged and never blocks the in-memory
// state update.
func SaveMessages(store Store, messages []models.ChatMessage, logger zerolog.Logger) {
	data, err := json.Marshal(messages)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal chat messages")
		return
	}

	if err := store.Set(KeyMessages, string(data)); err != nil {
		logger.Error().Err(err).Msg("Failed to save chat messages")
	}
}

// LoadMessages reads the persisted message log. A missing or corrupt
// payload yields an empty log rather than an error.
func LoadMessages(store Store, logger zerolog.Logger) []models.ChatMessage {
	data, found, err := store.Get(KeyMessages)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load chat messages")
		return nil
	}
	if !found {
		return nil
	}

	var messages []models.ChatMessage
	if err := json.Unmarshal([]byte(data), &messages); err != nil {
		logger.Error().Err(err).Msg("Failed to decode stored chat messages")
		return nil
	}

	return messages
}
