package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	applog "shopchat/internal/log"
)

// AuthHandler completes the identity provider's authorization-code flow by
// exchanging the code at the provider's token endpoint and relaying the
// session JSON. Sign-in itself lives at the provider; this app never sees
// credentials.
type AuthHandler struct {
	IdentityURL string
	HTTPClient  *http.Client
}

func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if h.IdentityURL == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Identity provider not configured. Set IDENTITY_URL",
		})
	}
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code is required"})
	}

	payload, err := json.Marshal(fiber.Map{"auth_code": code})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	req, err := http.NewRequestWithContext(c.Context(), http.MethodPost,
		h.IdentityURL+"/auth/v1/token?grant_type=authorization_code", bytes.NewReader(payload))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.HTTPClient.Do(req)
	if err != nil {
		applog.Error(c, "auth.exchange.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not reach identity provider"})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		applog.Error(c, "auth.exchange.read.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Could not read identity provider reply"})
	}

	applog.Audit(c, "auth.exchange", map[string]any{"status": resp.StatusCode})
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(resp.StatusCode).Send(body)
}
