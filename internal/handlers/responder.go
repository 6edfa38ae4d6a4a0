package handlers

import (
	"context"
	"errors"
	"strings"

	"zipto/internal/models"

	"github.com/sashabaranov/go-openai"
)

// Responder produces the assistant side of a conversation
type Responder interface {
	Reply(ctx context.Context, history []models.HistoryRecord, message string) (string, error)
}

// CannedResponder answers with fixed storefront support replies keyed
// on the message text. It keeps the dev server usable without an LLM
// key.
type CannedResponder struct{}

func (CannedResponder) Reply(_ context.Context, _ []models.HistoryRecord, message string) (string, error) {
	lowered := strings.ToLower(message)

	switch {
	case strings.Contains(lowered, "order") && (strings.Contains(lowered, "where") || strings.Contains(lowered, "status") || strings.Contains(lowered, "track")):
		return "Your order is packed and the rider is on the way. Expected delivery in about 12 minutes.", nil
	case strings.Contains(lowered, "refund") || strings.Contains(lowered, "return"):
		return "Refunds are processed to the original payment method within 3 to 5 business days of pickup.", nil
	case strings.Contains(lowered, "delivery fee") || strings.Contains(lowered, "delivery charge"):
		return "Delivery is free on orders of ₹99 or more. Below that a ₹30 delivery fee applies.", nil
	case strings.Contains(lowered, "cancel"):
		return "You can cancel an order until the rider picks it up. After that, please refuse at the door and a refund will be issued.", nil
	case strings.Contains(lowered, "hello") || strings.HasPrefix(lowered, "hi ") || lowered == "hi":
		return "Hi! I can help with orders, deliveries, refunds and anything in your cart. What do you need?", nil
	default:
		return "I can help with orders, deliveries, refunds and your cart. Could you tell me a bit more?", nil
	}
}

// OpenAIResponder answers with a chat completion, carrying the
// conversation so far as context
type OpenAIResponder struct {
	client *openai.Client
}

func NewOpenAIResponder(apiKey string) *OpenAIResponder {
	return &OpenAIResponder{client: openai.NewClient(apiKey)}
}

const supportSystemPrompt = "You are the support assistant for a quick-commerce grocery storefront. " +
	"Customers ask about orders, deliveries, refunds and their cart. " +
	"Delivery is free on orders of ₹99 or more, otherwise a ₹30 fee applies. " +
	"Answer briefly and concretely."

func (r *OpenAIResponder) Reply(ctx context.Context, history []models.HistoryRecord, message string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: supportSystemPrompt},
	}

	for _, record := range history {
		role := openai.ChatMessageRoleUser
		if strings.Contains(strings.ToLower(record.Role), "assistant") {
			role = openai.ChatMessageRoleAssistant
		}
		content := record.Content
		if content == "" {
			content = record.Message
		}
		if content == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       openai.GPT4o,
		Messages:    messages,
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
