package middleware

import (
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/config"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JWTProtected verifies the bearer token issued by the identity
// service. The "sub" claim carries the user id.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
				Code:    "unauthorized",
			})
		},
	})
}
