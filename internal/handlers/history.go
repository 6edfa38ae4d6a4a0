package handlers

import (
	"net/http"
	"strconv"

	"zipto/internal/models"

	"github.com/labstack/echo/v4"
)

type historyReply struct {
	Messages []models.HistoryRecord `json:"messages"`
}

// ConversationMessagesHandler returns the recent messages of a
// conversation, oldest first
func ConversationMessagesHandler(log *ConversationLog) echo.HandlerFunc {
	return func(c echo.Context) error {
		conversationID := c.Param("id")
		if conversationID == "" {
			return c.JSON(http.StatusBadRequest, chatError{
				Error: chatErrorDetail{Message: "Conversation id is required"},
			})
		}

		limit := 0
		if raw := c.QueryParam("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				return c.JSON(http.StatusBadRequest, chatError{
					Error: chatErrorDetail{Message: "Invalid limit"},
				})
			}
			limit = parsed
		}

		records := log.Messages(conversationID, limit)
		if records == nil {
			records = []models.HistoryRecord{}
		}
		return c.JSON(http.StatusOK, historyReply{Messages: records})
	}
}
