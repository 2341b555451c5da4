package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocRawToken holds the verified raw JWT once the auth middleware accepts it.
const LocRawToken = "raw_token"

// GetRawAccessToken looks at the Authorization bearer first and, when
// allowCookie is set, falls back to the access_token cookie.
func GetRawAccessToken(c *fiber.Ctx, allowCookie bool) string {
	const p = "bearer "
	if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); len(authz) > len(p) && strings.EqualFold(authz[:len(p)], p) {
		return strings.TrimSpace(authz[len(p):])
	}
	if allowCookie {
		return strings.TrimSpace(c.Cookies("access_token"))
	}
	return ""
}

func SetRawAccessToken(c *fiber.Ctx, raw string) {
	if raw = strings.TrimSpace(raw); raw != "" {
		c.Locals(LocRawToken, raw)
	}
}
