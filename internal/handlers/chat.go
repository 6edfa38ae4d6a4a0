package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"zipto/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// chatReply is the enveloped wire shape of a successful chat response
type chatReply struct {
	Success bool          `json:"success"`
	Data    chatReplyData `json:"data"`
}

type chatReplyData struct {
	ReplyText      string `json:"replyText"`
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
	TraceID        string `json:"traceId"`
}

type chatError struct {
	Success bool            `json:"success"`
	Error   chatErrorDetail `json:"error"`
}

type chatErrorDetail struct {
	Message string `json:"message"`
}

// ChatMessageHandler accepts a customer message, produces the assistant
// reply and publishes it on the push channel as well, mirroring the
// production backend's dual delivery
func ChatMessageHandler(log *ConversationLog, hub *Hub, responder Responder, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.ChatRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, chatError{
				Error: chatErrorDetail{Message: "Invalid request body"},
			})
		}

		if strings.TrimSpace(req.Message) == "" {
			return c.JSON(http.StatusBadRequest, chatError{
				Error: chatErrorDetail{Message: "Message cannot be empty"},
			})
		}

		conversationID := req.ConversationID
		if conversationID == "" {
			conversationID = "conv-" + uuid.NewString()[:8]
		}

		now := time.Now().UnixMilli()
		userTS := now
		log.Append(conversationID, models.HistoryRecord{
			MessageID:      "msg-" + uuid.NewString()[:8],
			ConversationID: conversationID,
			Role:           "customer",
			Content:        req.Message,
			Timestamp:      &userTS,
		})

		ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
		defer cancel()

		replyText, err := responder.Reply(ctx, log.Messages(conversationID, 0), req.Message)
		if err != nil {
			logger.Error().Err(err).Msg("Responder failed")
			return c.JSON(http.StatusInternalServerError, chatError{
				Error: chatErrorDetail{Message: "Assistant backend error"},
			})
		}

		replyTS := time.Now().UnixMilli()
		reply := models.HistoryRecord{
			MessageID:      "msg-" + uuid.NewString()[:8],
			ConversationID: conversationID,
			Role:           "assistant",
			Content:        replyText,
			Timestamp:      &replyTS,
		}
		log.Append(conversationID, reply)

		// The reply also goes out on the push channel, so a subscribed
		// client sees it twice and must reconcile
		hub.Publish(conversationID, reply)

		return c.JSON(http.StatusOK, chatReply{
			Success: true,
			Data: chatReplyData{
				ReplyText:      replyText,
				ConversationID: conversationID,
				MessageID:      reply.MessageID,
				TraceID:        "trace-" + uuid.NewString()[:8],
			},
		})
	}
}
