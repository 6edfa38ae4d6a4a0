package chatapi

import (
	"encoding/json"

	"zipto/internal/models"
)

// errorBody is the backend's error detail shape
type errorBody struct {
	Message string `json:"message,omitempty"`
}

// payloadBody holds every field the chat endpoints may return. The
// backend sometimes nests these under a "data" wrapper and sometimes
// returns them at the top level, so the same shape is used for both.
type payloadBody struct {
	ReplyText      string            `json:"replyText,omitempty"`
	Cards          []models.ChatCard `json:"cards,omitempty"`
	TraceID        string            `json:"traceId,omitempty"`
	ConversationID string            `json:"conversationId,omitempty"`
	MessageID      string            `json:"messageId,omitempty"`
	Metadata       json.RawMessage   `json:"metadata,omitempty"`
	Healthy        *bool             `json:"healthy,omitempty"`
	Provider       string            `json:"provider,omitempty"`
	Model          string            `json:"model,omitempty"`
	Error          *errorBody        `json:"error,omitempty"`
	Message        string            `json:"message,omitempty"`
}

// apiEnvelope is the raw wire shape of a chat API response, before
// normalization
type apiEnvelope struct {
	Success *bool        `json:"success,omitempty"`
	Data    *payloadBody `json:"data,omitempty"`
	payloadBody
}

// decodeEnvelope parses a response body. A malformed body is treated as
// absent data, never as a failure of the call itself.
func decodeEnvelope(body []byte) *apiEnvelope {
	if len(body) == 0 {
		return nil
	}
	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	return &envelope
}

// failed reports whether the envelope carries an explicit success:false
func (e *apiEnvelope) failed() bool {
	return e != nil && e.Success != nil && !*e.Success
}

// normalize flattens the enveloped-vs-flat duality into a single
// payload, preferring wrapped fields when both are present
func (e *apiEnvelope) normalize() payloadBody {
	if e == nil {
		return payloadBody{}
	}

	resolved := e.payloadBody
	if e.Data == nil {
		return resolved
	}

	if e.Data.ReplyText != "" {
		resolved.ReplyText = e.Data.ReplyText
	}
	if len(e.Data.Cards) > 0 {
		resolved.Cards = e.Data.Cards
	}
	if e.Data.TraceID != "" {
		resolved.TraceID = e.Data.TraceID
	}
	if e.Data.ConversationID != "" {
		resolved.ConversationID = e.Data.ConversationID
	}
	if e.Data.MessageID != "" {
		resolved.MessageID = e.Data.MessageID
	}
	if len(e.Data.Metadata) > 0 {
		resolved.Metadata = e.Data.Metadata
	}
	if e.Data.Healthy != nil {
		resolved.Healthy = e.Data.Healthy
	}
	if e.Data.Provider != "" {
		resolved.Provider = e.Data.Provider
	}
	if e.Data.Model != "" {
		resolved.Model = e.Data.Model
	}
	if e.Data.Error != nil {
		resolved.Error = e.Data.Error
	}
	if e.Data.Message != "" {
		resolved.Message = e.Data.Message
	}

	return resolved
}

// errorMessage extracts the user-facing error text from a normalized
// payload, if the backend provided one
func (p payloadBody) errorMessage() string {
	if p.Error != nil && p.Error.Message != "" {
		return p.Error.Message
	}
	return p.Message
}

// historyEnvelope accepts the three shapes the history endpoint is known
// to return: a bare array, {"data": [...]}, or {"messages": [...]}
type historyEnvelope struct {
	Data     []models.HistoryRecord `json:"data,omitempty"`
	Messages []models.HistoryRecord `json:"messages,omitempty"`
}

// decodeHistory parses a conversation history response body
func decodeHistory(body []byte) []models.HistoryRecord {
	var records []models.HistoryRecord
	if err := json.Unmarshal(body, &records); err == nil {
		return records
	}

	var envelope historyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if len(envelope.Data) > 0 {
		return envelope.Data
	}
	return envelope.Messages
}
