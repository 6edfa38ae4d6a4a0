package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"zipto/internal/cache"
	"zipto/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// User-facing fallback replies. Failures are reported as ordinary
// assistant messages, never as errors the caller must handle.
const (
	fallbackUnavailable = "Assistant is currently unavailable. Please try again."
	fallbackTimeout     = "The assistant is taking longer than usual. Please try again."
	fallbackRateLimited = "Too many requests. Please wait a moment and try again."
	fallbackGeneric     = "Something went wrong. Please try again."
)

const (
	healthCacheKey = "chat_health_status"
	healthCacheTTL = 30 * time.Second
	healthTimeout  = 10 * time.Second
)

// Client talks to the chat backend over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	cache      *cache.Cache
	logger     zerolog.Logger
}

// New creates a chat API client. timeout bounds a single send round
// trip; replies may be computed by a slow model, so callers typically
// pass tens of seconds.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
		cache:      cache.New(),
		logger:     logger,
	}
}

// SendMessage posts one chat message and returns the assistant reply.
// It never returns an error: every failure mode resolves to a
// ChatResponse carrying a safe fallback reply, so the caller needs no
// error handling around the network.
func (c *Client) SendMessage(ctx context.Context, request models.ChatRequest) models.ChatResponse {
	request.SessionID = strings.TrimSpace(request.SessionID)
	if request.SessionID == "" {
		request.SessionID = generateSessionID()
	}
	if request.Mode == "" {
		request.Mode = "auto"
	}

	body, err := json.Marshal(request)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to marshal chat request")
		return fallbackResponse(fallbackGeneric, generateTraceID())
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat/message", bytes.NewReader(body))
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build chat request")
		return fallbackResponse(fallbackGeneric, generateTraceID())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportFailure(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	envelope := decodeEnvelope(respBody)
	payload := envelope.normalize()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || envelope.failed() {
		return c.statusFailure(resp.StatusCode, payload)
	}

	replyText := payload.ReplyText
	if replyText == "" {
		replyText = fallbackUnavailable
	}

	cards := payload.Cards
	if cards == nil {
		cards = []models.ChatCard{}
	}

	traceID := payload.TraceID
	if traceID == "" {
		traceID = generateTraceID()
	}

	return models.ChatResponse{
		ReplyText:      replyText,
		Cards:          cards,
		TraceID:        traceID,
		ConversationID: payload.ConversationID,
		MessageID:      payload.MessageID,
		Metadata:       payload.Metadata,
	}
}

// transportFailure maps request-level errors (timeout, connection
// refused) to fallback replies
func (c *Client) transportFailure(err error) models.ChatResponse {
	c.logger.Warn().Err(err).Msg("Chat request failed")

	if errors.Is(err, context.DeadlineExceeded) {
		return fallbackResponse(fallbackTimeout, generateTraceID())
	}
	return fallbackResponse(fallbackUnavailable, generateTraceID())
}

// statusFailure maps non-success responses to fallback replies. Backend
// detail is surfaced for ordinary client errors but not for 5xx, which
// could leak internals.
func (c *Client) statusFailure(status int, payload payloadBody) models.ChatResponse {
	traceID := payload.TraceID
	if traceID == "" {
		traceID = generateTraceID()
	}

	c.logger.Warn().Int("status", status).Str("trace_id", traceID).Msg("Chat request rejected")

	switch {
	case status == http.StatusTooManyRequests:
		return fallbackResponse(fallbackRateLimited, traceID)
	case status >= 500:
		return fallbackResponse(fallbackGeneric, traceID)
	}

	if message := payload.errorMessage(); message != "" {
		return fallbackResponse(message, traceID)
	}
	return fallbackResponse(fallbackUnavailable, traceID)
}

// FetchConversationMessages retrieves up to limit persisted messages for
// a conversation. This backs background hydration, so failures are
// silent: the caller gets an empty slice and the UI simply shows an
// empty conversation.
func (c *Client) FetchConversationMessages(ctx context.Context, conversationID string, limit int) []models.HistoryRecord {
	if conversationID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/api/chat/conversation/%s/messages?limit=%d", c.baseURL, conversationID, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to build history request")
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("History fetch failed")
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("conversation_id", conversationID).Msg("History fetch rejected")
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	return decodeHistory(body)
}

// CheckHealth reports whether the assistant backend is reachable.
// Results are cached briefly since monitoring UIs poll this.
func (c *Client) CheckHealth(ctx context.Context) models.HealthStatus {
	if cached, found := c.cache.Get(healthCacheKey); found {
		if status, ok := cached.(models.HealthStatus); ok {
			return status
		}
	}

	status := c.fetchHealth(ctx)
	c.cache.Set(healthCacheKey, status, healthCacheTTL)
	return status
}

func (c *Client) fetchHealth(ctx context.Context) models.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chat/health", nil)
	if err != nil {
		return models.HealthStatus{Healthy: false}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Chat health check failed")
		return models.HealthStatus{Healthy: false}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.HealthStatus{Healthy: false}
	}

	body, _ := io.ReadAll(resp.Body)
	payload := decodeEnvelope(body).normalize()

	// A healthy 2xx with no explicit flag counts as healthy
	healthy := true
	if payload.Healthy != nil {
		healthy = *payload.Healthy
	}

	return models.HealthStatus{
		Healthy:  healthy,
		Provider: payload.Provider,
		Model:    payload.Model,
	}
}

// generateTraceID creates a client-side trace id for requests that
// failed before the backend could assign one
func generateTraceID() string {
	return fmt.Sprintf("trace-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// generateSessionID creates a replacement session id for requests that
// arrive with a blank one
func generateSessionID() string {
	return fmt.Sprintf("zipto-web-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func fallbackResponse(text, traceID string) models.ChatResponse {
	return models.ChatResponse{
		ReplyText: text,
		Cards:     []models.ChatCard{},
		TraceID:   traceID,
		Failed:    true,
	}
}
