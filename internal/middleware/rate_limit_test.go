package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitKeysByUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-User"); id == "1" {
			c.Locals("user_id", uint(1))
		} else if id == "2" {
			c.Locals("user_id", uint(2))
		}
		return c.Next()
	})
	app.Use(RateLimit("overview", 2, time.Minute))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	call := func(user string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	require.Equal(t, fiber.StatusOK, call("1").StatusCode)
	require.Equal(t, fiber.StatusOK, call("1").StatusCode)

	limited := call("1")
	require.Equal(t, fiber.StatusTooManyRequests, limited.StatusCode)
	var payload struct {
		Success bool           `json:"success"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.NewDecoder(limited.Body).Decode(&payload))
	require.False(t, payload.Success)
	require.Equal(t, "1m0s", payload.Details["window"])

	require.Equal(t, fiber.StatusOK, call("2").StatusCode)
}
