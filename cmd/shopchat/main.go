package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"shopchat/internal/auth"
	"shopchat/internal/config"
	"shopchat/internal/http/handlers"
	"shopchat/internal/localstore"
	applog "shopchat/internal/log"
	"shopchat/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	local, err := localstore.New(cfg.DataDir)
	if err != nil {
		log.Fatal(err)
	}

	verifier := auth.NewVerifier(cfg.IdentityJWTSecret)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(auth.Middleware(verifier))
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/healthz")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, local, cfg)

	api := app.Group("/api")

	// Chat proxy (throttled harder: each turn hits the backend)
	chatLimiter := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|chat"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.chat.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Post("/chat", chatLimiter, deps.ChatHandler.Send)
	api.Get("/chat/history", deps.ChatHandler.History)

	// Cart
	api.Get("/cart", deps.CartHandler.List)
	api.Post("/cart", deps.CartHandler.Add)
	api.Put("/cart/quantity", deps.CartHandler.SetQuantity)
	api.Delete("/cart/:productID", deps.CartHandler.Remove)
	api.Post("/cart/migrate", deps.CartHandler.Migrate)

	// Favorites
	api.Get("/favorites", deps.FavoritesHandler.List)
	api.Post("/favorites", deps.FavoritesHandler.Add)
	api.Delete("/favorites/:productID", deps.FavoritesHandler.Remove)
	api.Get("/favorites/has/:productID", deps.FavoritesHandler.Has)
	api.Post("/favorites/migrate", deps.FavoritesHandler.Migrate)

	// Identity provider code exchange
	app.Get("/auth/callback", deps.AuthHandler.Callback)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
