package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/config"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/session"
)

// JWTProtected verifies access tokens issued by the identity provider, either
// with the shared HS256 secret or against the provider's JWKS endpoint.
func JWTProtected(cfg *config.Config) fiber.Handler {
	jwtCfg := jwtware.Config{
		ContextKey: session.ContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	}

	if cfg.JWTJWKSURL != "" {
		jwtCfg.JWKSetURLs = []string{cfg.JWTJWKSURL}
	} else {
		jwtCfg.SigningKey = jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)}
	}

	return jwtware.New(jwtCfg)
}
