package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type healthReply struct {
	Healthy   bool      `json:"healthy"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model,omitempty"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatHealthHandler reports whether the assistant backend is usable
func ChatHealthHandler(version string, openAIConfigured bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		reply := healthReply{
			Healthy:   true,
			Provider:  "canned",
			Version:   version,
			Timestamp: time.Now().UTC(),
		}
		if openAIConfigured {
			reply.Provider = "openai"
			reply.Model = "gpt-4o"
		}
		return c.JSON(http.StatusOK, reply)
	}
}
