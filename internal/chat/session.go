package chat

import (
	"fmt"
	"time"

	"zipto/internal/storage"

	"github.com/google/uuid"
)

// newSessionID generates a fresh client-side session identifier
func newSessionID() string {
	return fmt.Sprintf("session-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:9])
}

// loadSessionID reads the persisted session id, generating and
// persisting one on first run. The session id is never regenerated
// afterwards except by an explicit reset.
func (s *Store) loadSessionID() string {
	sessionID, found, err := s.storage.Get(storage.KeySessionID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load session id")
	}
	if found && sessionID != "" {
		return sessionID
	}

	sessionID = newSessionID()
	if err := s.storage.Set(storage.KeySessionID, sessionID); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist session id")
	}
	return sessionID
}

// loadConversationID reads the persisted conversation id, if any
func (s *Store) loadConversationID() string {
	conversationID, _, err := s.storage.Get(storage.KeyConversationID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load conversation id")
	}
	return conversationID
}

// setConversationIDLocked records a backend-assigned conversation id
// and subscribes the push channel to it. Subscription setup can be
// triggered from several code paths (startup, first reply), so an
// explicit last-subscribed guard prevents redundant rejoins for the
// same id. Caller holds s.mu.
func (s *Store) setConversationIDLocked(conversationID string) {
	if conversationID == "" {
		s.conversationID = ""
		if err := s.storage.Delete(storage.KeyConversationID); err != nil {
			s.logger.Error().Err(err).Msg("Failed to clear conversation id")
		}
		return
	}

	s.conversationID = conversationID
	if err := s.storage.Set(storage.KeyConversationID, conversationID); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist conversation id")
	}

	if conversationID != s.lastSubscribed {
		s.lastSubscribed = conversationID
		s.channel.JoinConversation(conversationID)
	}
}
