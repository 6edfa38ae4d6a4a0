package models

import "encoding/json"

// Role identifies who authored a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage represents one entry in the conversation log
type ChatMessage struct {
	ID               string `json:"id"`                  // Local identifier, client-generated until the backend assigns one
	Role             Role   `json:"role"`                // Message role (user, assistant)
	Content          string `json:"content"`             // Message text
	Timestamp        int64  `json:"timestamp"`           // Creation instant, milliseconds since epoch
	BackendMessageID string `json:"messageId,omitempty"` // Durable backend id, used for deduplication
	IsError          bool   `json:"error,omitempty"`     // Marks a failed exchange, filtered during retry
}

// CartSummary is the cart snapshot attached to outbound chat requests
type CartSummary struct {
	ItemCount int     `json:"itemCount"` // Number of items in the cart
	Total     float64 `json:"total"`     // Cart value at selling price
}

// ChatContext carries the live application state sent with every chat request.
// It is rebuilt fresh on every send and never persisted.
type ChatContext struct {
	Page        string       `json:"page"`                  // Current page (home, category, product, cart, orders, profile)
	CartSummary *CartSummary `json:"cartSummary,omitempty"` // Current cart summary if any
	LastOrderID string       `json:"lastOrderId,omitempty"` // Most recent order id if known
}

// ChatRequest represents the request body for the chat message endpoint
type ChatRequest struct {
	SessionID      string      `json:"sessionId"`                // Client-generated session identifier
	UserID         *string     `json:"userId"`                   // Authenticated user id, null in this flow
	Message        string      `json:"message"`                  // Message text
	Context        ChatContext `json:"context"`                  // Live application context
	Mode           string      `json:"mode,omitempty"`           // chat, rag or auto (default auto)
	ConversationID string      `json:"conversationId,omitempty"` // Backend conversation id once assigned
}

// ChatCard is an opaque rich-content card attached to an assistant reply
type ChatCard map[string]any

// ChatResponse represents the normalized response from the chat endpoint
type ChatResponse struct {
	ReplyText      string          `json:"replyText"`                // Assistant reply text (or fallback message)
	Cards          []ChatCard      `json:"cards,omitempty"`          // Optional rich content cards
	TraceID        string          `json:"traceId"`                  // Diagnostics trace id
	ConversationID string          `json:"conversationId,omitempty"` // Conversation id assigned by the backend
	MessageID      string          `json:"messageId,omitempty"`      // Durable id of the reply message
	Metadata       json.RawMessage `json:"metadata,omitempty"`       // Provider metadata, passed through untouched
	Failed         bool            `json:"-"`                        // True when ReplyText is a client-side fallback, not a real reply
}

// HistoryRecord is a loosely-shaped persisted message as the backend
// reports it, from either the history endpoint or the push channel.
// CreatedAt may be a date string or a numeric epoch, so it is kept raw.
type HistoryRecord struct {
	MessageID      string          `json:"messageId,omitempty"`
	ConversationID string          `json:"conversationId,omitempty"`
	Role           string          `json:"role,omitempty"`
	Content        string          `json:"content,omitempty"`
	Message        string          `json:"message,omitempty"`
	CreatedAt      json.RawMessage `json:"createdAt,omitempty"`
	Timestamp      *int64          `json:"timestamp,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

// HealthStatus represents the chat backend health check result
type HealthStatus struct {
	Healthy  bool   `json:"healthy"`            // Whether the assistant backend is reachable
	Provider string `json:"provider,omitempty"` // LLM provider name if reported
	Model    string `json:"model,omitempty"`    // Model name if reported
}

/// ConversationMessageEvent is the payload of a conversation:new_message
// push event
type ConversationMessageEvent struct {
	ConversationID string         `json:"conversationId,omitempty"`
	Message        *HistoryRecord `json:"message,omitempty"`
}
