package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"zipto/internal/models"

	"github.com/google/uuid"
)

// roleFromBackend maps the backend's role vocabulary onto the two UI
// roles. Operator and unrecognized roles render as assistant.
func roleFromBackend(role string) models.Role {
	if role == "customer" || role == "user" {
		return models.RoleUser
	}
	return models.RoleAssistant
}

// resolveContent picks the text body from whichever field the backend
// populated
func resolveContent(record models.HistoryRecord) string {
	if record.Content != "" {
		return record.Content
	}
	return record.Message
}

// resolveTimestamp extracts a millisecond epoch from a history record,
// preferring the numeric timestamp, then createdAt (numeric or date
// string), then the current time
func resolveTimestamp(record models.HistoryRecord) int64 {
	if record.Timestamp != nil {
		return *record.Timestamp
	}

	if len(record.CreatedAt) > 0 {
		var numeric float64
		if err := json.Unmarshal(record.CreatedAt, &numeric); err == nil {
			return int64(numeric)
		}

		var text string
		if err := json.Unmarshal(record.CreatedAt, &text); err == nil {
			if parsed, ok := parseDate(text); ok {
				return parsed.UnixMilli()
			}
		}
	}

	return time.Now().UnixMilli()
}

// parseDate tries the date layouts backends have been seen to emit
func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// messageFromRecord builds a ChatMessage from a backend history record
// or push payload. Records with no resolvable content produce a message
// with empty Content, which callers drop.
func messageFromRecord(record models.HistoryRecord) models.ChatMessage {
	timestamp := resolveTimestamp(record)

	id := record.MessageID
	if id == "" {
		id = fmt.Sprintf("support-%d-%s", timestamp, uuid.NewString()[:6])
	}

	return models.ChatMessage{
		ID:               id,
		Role:             roleFromBackend(record.Role),
		Content:          resolveContent(record),
		Timestamp:        timestamp,
		BackendMessageID: record.MessageID,
	}
}
