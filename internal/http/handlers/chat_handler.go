package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"shopchat/internal/chat"
	applog "shopchat/internal/log"
	"shopchat/internal/validate"
)

type ChatHandler struct {
	Client   *chat.Client
	Sessions *chat.History
}

// Send proxies one chat turn to the recommendation backend and relays the
// reply bytes unchanged. The decoded copy feeds session history.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	if h.Client.BaseURL == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "API not configured. Set CHAT_API_BASE_URL",
		})
	}

	var req chat.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		applog.Error(c, "chat.decode.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error", "detail": err.Error(),
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message is required"})
	}

	raw, decoded, err := h.Client.Send(c.Context(), req)
	if err != nil {
		var be *chat.BackendError
		switch {
		case errors.As(err, &be):
			applog.Error(c, "chat.backend.fail", err, map[string]any{"status": be.Status})
			return c.Status(be.Status).JSON(fiber.Map{
				"error": fmt.Sprintf("Backend API error: %d", be.Status), "detail": be.Body,
			})
		case errors.Is(err, chat.ErrNotConfigured):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "API not configured. Set CHAT_API_BASE_URL",
			})
		default:
			applog.Error(c, "chat.fail", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error", "detail": err.Error(),
			})
		}
	}

	h.Sessions.Record(decoded.SessionID, req.Message, decoded)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

// History returns the recorded transcript for one backend session.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	sid, ok := validate.SessionID(c.Query("session_id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_id is required"})
	}
	return c.JSON(fiber.Map{"session_id": sid, "messages": h.Sessions.Messages(sid)})
}
