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

type CartHandler struct {
	Cart *services.CartService
}

type cartAddBody struct {
	Product  json.RawMessage `json:"product"`
	Quantity *int            `json:"quantity"`
}

type cartQuantityBody struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

func (h *CartHandler) List(c *fiber.Ctx) error {
	sid := ensureSID(c)
	return c.JSON(fiber.Map{"items": h.Cart.Load(sid, userID(c))})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)

	var body cartAddBody
	if err := json.Unmarshal(c.Body(), &body); err != nil || len(body.Product) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product is required"})
	}
	var p product.Product
	if err := json.Unmarshal(body.Product, &p); err != nil || p.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product id is required"})
	}
	qty := 1
	if body.Quantity != nil {
		qty = *body.Quantity
	}
	qty = validate.ClampQty(qty)

	if err := h.Cart.Add(sid, userID(c), p, qty); err != nil {
		applog.Error(c, "cart.add.fail", err, map[string]any{"product": p.ID})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not add to cart"})
	}
	applog.Audit(c, "cart.add", map[string]any{"product": p.ID, "qty": qty})
	return c.JSON(fiber.Map{"items": h.Cart.Load(sid, userID(c))})
}

func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	sid := ensureSID(c)

	var body cartQuantityBody
	if err := json.Unmarshal(c.Body(), &body); err != nil || body.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "quantity is required"})
	}
	pid, ok := validate.ProductID(body.ProductID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product_id is required"})
	}

	if err := h.Cart.SetQuantity(sid, userID(c), pid, *body.Quantity); err != nil {
		applog.Error(c, "cart.quantity.fail", err, map[string]any{"product": pid})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update cart"})
	}
	return c.JSON(fiber.Map{"items": h.Cart.Load(sid, userID(c))})
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)

	raw, _ := url.PathUnescape(c.Params("productID"))
	pid, ok := validate.ProductID(raw)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "product id is required"})
	}

	if err := h.Cart.Remove(sid, userID(c), pid); err != nil {
		applog.Error(c, "cart.remove.fail", err, map[string]any{"product": pid})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not remove from cart"})
	}
	applog.Audit(c, "cart.remove", map[string]any{"product": pid})
	return c.JSON(fiber.Map{"items": h.Cart.Load(sid, userID(c))})
}

// Migrate folds the guest cart into the signed-in user's rows. Requires a
// bearer identity; the sid cookie names the guest document to fold in.
func (h *CartHandler) Migrate(c *fiber.Ctx) error {
	uid := userID(c)
	if uid == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
	}
	sid := ensureSID(c)
	items := h.Cart.MigrateLocalToRemote(sid, uid)
	applog.Audit(c, "cart.migrate", map[string]any{"items": len(items)})
	return c.JSON(fiber.Map{"items": items})
}
