package handlers

import (
	"encoding/json"
	"net/url"

	"github.com/gofiber/fiber/v2"

	applog "shopchat/internal/log"
	"shopchat/internal/product"
	"shopchat/internal/services"
	"shopchat/internal/validate"
)

type FavoritesHandler struct {
	Favorites *services.FavoritesService
}

type favoriteAddBody struct {
	Product json.RawMessage `json:"product"`
}

func (h *FavoritesHandler) List(c *fiber.Ctx) error {
	sid := ensureSID(c)
	return c.JSON(fiber.Map{"items": h.Favorites.Load(sid, userID(c))})
}

func (h *FavoritesHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)

	var body favoriteAddBody
	if err := json.Unmarshal(c.Body(), &body); err != nil || len(body.Product) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product is required"})
	}
	var p product.Product
	if err := json.Unmarshal(body.Product, &p); err != nil || p.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product id is required"})
	}

	if err := h.Favorites.Add(sid, userID(c), p); err != nil {
		applog.Error(c, "favorites.add.fail", err, map[string]any{"product": p.ID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not save favorite"})
	}
	applog.Audit(c, "favorites.add", map[string]any{"product": p.ID})
	return c.JSON(fiber.Map{"items": h.Favorites.Load(sid, userID(c))})
}

func (h *FavoritesHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)

	raw, _ := url.PathUnescape(c.Params("productID"))
	pid, ok := validate.ProductID(raw)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product id is required"})
	}

	if err := h.Favorites.Remove(sid, userID(c), pid); err != nil {
		applog.Error(c, "favorites.remove.fail", err, map[string]any{"product": pid})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not remove favorite"})
	}
	applog.Audit(c, "favorites.remove", map[string]any{"product": pid})
	return c.JSON(fiber.Map{"items": h.Favorites.Load(sid, userID(c))})
}

func (h *FavoritesHandler) Has(c *fiber.Ctx) error {
	sid := ensureSID(c)

	raw, _ := url.PathUnescape(c.Params("productID"))
	pid, ok := validate.ProductID(raw)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product id is required"})
	}
	return c.JSON(fiber.Map{"has": h.Favorites.Has(sid, userID(c), pid)})
}

// Migrate folds guest favorites into the signed-in user's rows.
func (h *FavoritesHandler) Migrate(c *fiber.Ctx) error {
	uid := userID(c)
	if uid == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}
	sid := ensureSID(c)
	items := h.Favorites.MigrateLocalToRemote(sid, uid)
	applog.Audit(c, "favorites.migrate", map[string]any{"items": len(items)})
	return c.JSON(fiber.Map{"items": items})
}
