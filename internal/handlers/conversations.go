package handlers

import (
	"sync"

	"zipto/internal/models"
)

// maxConversationMessages bounds each conversation's in-memory log
const maxConversationMessages = 200

// ConversationLog is the dev backend's in-memory conversation store
type ConversationLog struct {
	mu            sync.Mutex
	conversations map[string][]models.HistoryRecord
}

func NewConversationLog() *ConversationLog {
	return &ConversationLog{
		conversations: make(map[string][]models.HistoryRecord),
	}
}

// Append records a message, trimming the oldest entries past the cap
func (l *ConversationLog) Append(conversationID string, record models.HistoryRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := append(l.conversations[conversationID], record)
	if len(records) > maxConversationMessages {
		records = records[len(records)-maxConversationMessages:]
	}
	l.conversations[conversationID] = records
}

// Messages returns up to limit most recent messages in chronological
// order. A non-positive limit returns everything.
func (l *ConversationLog) Messages(conversationID string, limit int) []models.HistoryRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.conversations[conversationID]
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return append([]models.HistoryRecord(nil), records...)
}

// Exists reports whether a conversation has any messages
func (l *ConversationLog) Exists(conversationID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.conversations[conversationID]) > 0
}
