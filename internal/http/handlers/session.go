package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shopchat/internal/auth"
	"shopchat/internal/validate"
)

// ensureSID returns the guest session id, minting a cookie when absent or
// malformed. Guest cart/favorites state hangs off this id.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if _, ok := validate.SessionID(sid); !ok {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return sid
}

// userID is the store-selection switch: empty means guest (local document),
// set means the remote row-store.
func userID(c *fiber.Ctx) string {
	if u := auth.CurrentUser(c); u != nil {
		return u.ID
	}
	return ""
}
