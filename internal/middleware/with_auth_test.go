package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-progress-api/internal/middleware"
)

func TestWithAuth(t *testing.T) {
	cases := []struct {
		name   string
		userID interface{}
		role   string
		opts   middleware.AuthOptions
		status int
	}{
		{name: "student audience", userID: uint(10), role: "Student", opts: middleware.AuthOptions{Role: middleware.AuthRoleStudent}, status: fiber.StatusNoContent},
		{name: "guest denied student audience", userID: uint(10), role: "guest", opts: middleware.AuthOptions{Role: middleware.AuthRoleStudent}, status: fiber.StatusForbidden},
		{name: "editing teacher is staff", userID: uint(1), role: "EditingTeacher", opts: middleware.AuthOptions{Role: middleware.AuthRoleStaff}, status: fiber.StatusNoContent},
		{name: "student is not staff", userID: uint(3), role: "student", opts: middleware.AuthOptions{Role: middleware.AuthRoleStaff}, status: fiber.StatusForbidden},
		{name: "staff audience needs a user", role: "teacher", opts: middleware.AuthOptions{Role: middleware.AuthRoleStaff}, status: fiber.StatusUnauthorized},
		{name: "any audience is open", opts: middleware.AuthOptions{}, status: fiber.StatusNoContent},
		{name: "any audience with user required", opts: middleware.AuthOptions{RequireUser: true}, status: fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				if tc.userID != nil {
					c.Locals("user_id", tc.userID)
				}
				if tc.role != "" {
					c.Locals("user_role", tc.role)
				}
				return c.Next()
			})
			app.Get("/", middleware.WithAuth(func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusNoContent)
			}, tc.opts))

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
