package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-progress-api/internal/utils"
)

// Audiences accepted by WithAuth.
const (
	AuthRoleAny     = "any"
	AuthRoleStaff   = "staff"
	AuthRoleStudent = "student"
)

// staffRoles may read course-wide reports such as the overview. Course level
// capabilities are still checked by the progress service.
var staffRoles = map[string]struct{}{
	"admin":          {},
	"manager":        {},
	"teacher":        {},
	"editingteacher": {},
}

// AuthOptions configures WithAuth. Any role other than AuthRoleAny implies
// RequireUser.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth guards a single handler by caller presence and token role.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	audience := strings.ToLower(strings.TrimSpace(opts.Role))
	if audience == "" {
		audience = AuthRoleAny
	}
	requireUser := opts.RequireUser || audience != AuthRoleAny

	return func(c *fiber.Ctx) error {
		if requireUser && c.Locals("user_id") == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		if !roleAdmitted(audience, normalizeRoleValue(c.Locals("user_role"))) {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
		}
		return handler(c)
	}
}

func roleAdmitted(audience, role string) bool {
	switch audience {
	case AuthRoleAny:
		return true
	case AuthRoleStaff:
		_, ok := staffRoles[role]
		return ok
	default:
		return role == audience
	}
}
