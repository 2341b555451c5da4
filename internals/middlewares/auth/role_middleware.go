package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const defaultForbidden = "Forbidden: you are not authorized to access this resource"

// OnlyRoles lets the request through when any role set by AuthJWT matches.
// An empty message falls back to the generic forbidden text.
func OnlyRoles(forbiddenMessage string, allowed ...string) fiber.Handler {
	want := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		want[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}
	if forbiddenMessage == "" {
		forbiddenMessage = defaultForbidden
	}

	return func(c *fiber.Ctx) error {
		roles, ok := c.Locals(LocRoles).([]string)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		for _, r := range roles {
			if _, hit := want[strings.ToLower(r)]; hit {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, forbiddenMessage)
	}
}
