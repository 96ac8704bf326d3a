// Package session reads the caller identity that the JWT middleware stored on
// the request.
package session

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is where the JWT middleware stores the parsed token.
const ContextKey = "user"

var ErrNoSession = errors.New("no authenticated session")

// Identity is the external identity carried by a verified access token.
type Identity struct {
	Subject  string
	Email    string
	Username string
}

// FromContext extracts the identity from the verified token in c.
func FromContext(c *fiber.Ctx) (Identity, error) {
	token, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || token == nil || !token.Valid {
		return Identity{}, ErrNoSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrNoSession
	}

	sub, _ := claims["sub"].(string)
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return Identity{}, ErrNoSession
	}

	id := Identity{Subject: sub}
	id.Email, _ = claims["email"].(string)

	// Supabase-style tokens keep profile data under user_metadata.
	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		id.Username, _ = meta["username"].(string)
	}
	if id.Username == "" {
		id.Username, _ = claims["preferred_username"].(string)
	}
	return id, nil
}
