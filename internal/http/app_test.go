package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"

	"shopchat/internal/auth"
	"shopchat/internal/config"
	"shopchat/internal/http/handlers"
	"shopchat/internal/localstore"
	"shopchat/internal/repos"
)

const testJWTSecret = "test-secret"

// Minimal app with the real routes, in-memory store and a temp guest
// document dir. Rate limiting stays out; it has its own tests upstream.
func newTestApp(t *testing.T, cfg config.Config) *fiber.App {
	t.Helper()
	if cfg.DBDSN == "" {
		cfg.DBDSN = ":memory:"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = t.TempDir()
	}
	if cfg.IdentityJWTSecret == "" {
		cfg.IdentityJWTSecret = testJWTSecret
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	local, err := localstore.New(cfg.DataDir)
	if err != nil {
		t.Fatalf("open localstore: %v", err)
	}

	deps := handlers.NewDeps(db, local, cfg)

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(auth.Middleware(auth.NewVerifier(cfg.IdentityJWTSecret)))

	api := app.Group("/api")
	api.Post("/chat", deps.ChatHandler.Send)
	api.Get("/chat/history", deps.ChatHandler.History)
	api.Get("/cart", deps.CartHandler.List)
	api.Post("/cart", deps.CartHandler.Add)
	api.Put("/cart/quantity", deps.CartHandler.SetQuantity)
	api.Delete("/cart/:productID", deps.CartHandler.Remove)
	api.Post("/cart/migrate", deps.CartHandler.Migrate)
	api.Get("/favorites", deps.FavoritesHandler.List)
	api.Post("/favorites", deps.FavoritesHandler.Add)
	api.Delete("/favorites/:productID", deps.FavoritesHandler.Remove)
	api.Get("/favorites/has/:productID", deps.FavoritesHandler.Has)
	api.Post("/favorites/migrate", deps.FavoritesHandler.Migrate)
	app.Get("/auth/callback", deps.AuthHandler.Callback)

	return app
}

// bearerToken mints an HS256 access token the way the identity provider
// would.
func bearerToken(t *testing.T, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode body %q: %v", body, err)
	}
	return out
}

func itemCount(t *testing.T, resp *http.Response) int {
	t.Helper()
	items, ok := decodeJSON(t, resp)["items"].([]any)
	if !ok {
		t.Fatal("reply missing items array")
	}
	return len(items)
}
