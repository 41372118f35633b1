// Package auth consumes the hosted identity provider's sessions. It only
// verifies access tokens and reads the user id/email out of them; sign-in
// itself happens at the provider.
package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid access token")

// User is the slice of the provider's identity this app cares about.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserID lets the log package pick the id off request locals without
// importing this package.
func (u *User) UserID() string { return u.ID }

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 access tokens against the provider's JWT secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Parse(token string) (*User, error) {
	if len(v.secret) == 0 {
		return nil, ErrInvalidToken
	}
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &User{ID: c.Subject, Email: c.Email}, nil
}

// Middleware attaches the bearer user to the request when a valid token is
// present. Guests pass through untouched; a bad token is just a guest.
func Middleware(v *Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			if u, err := v.Parse(token); err == nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user for the request, or nil for a
// guest.
func CurrentUser(c *fiber.Ctx) *User {
	u, _ := c.Locals("user").(*User)
	return u
}
