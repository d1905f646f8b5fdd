package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		require.Equal(t, GetCorrelationID(c), CorrelationIDFromContext(c.UserContext()))
		return c.SendString(GetCorrelationID(c))
	})

	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "correlation header", headers: map[string]string{CorrelationHeader: "abc-123"}, want: "abc-123"},
		{name: "request id fallback", headers: map[string]string{"X-Request-ID": "req-9"}, want: "req-9"},
		{name: "too long", headers: map[string]string{CorrelationHeader: strings.Repeat("a", 200)}},
		{name: "embedded space", headers: map[string]string{CorrelationHeader: "a b"}},
		{name: "absent"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for key, value := range tc.headers {
				req.Header.Set(key, value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			got := resp.Header.Get(CorrelationHeader)
			if tc.want != "" {
				require.Equal(t, tc.want, got)
				return
			}
			require.Len(t, got, 36)
		})
	}
}

func TestContextWithCorrelation(t *testing.T) {
	ctx := ContextWithCorrelation(context.Background(), " id-1 ")
	require.Equal(t, "id-1", CorrelationIDFromContext(ctx))
	require.Equal(t, "id-1", CorrelationIDFromContext(ContextWithCorrelation(ctx, "  ")))
	require.Empty(t, CorrelationIDFromContext(context.Background()))
}
