package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtConfig(cfg))
}

// AdminJWT is JWTProtected, skipped for requests carrying the admin token so
// cron jobs and operators can call admin routes without a user session.
func AdminJWT(cfg *config.Config) fiber.Handler {
	jc := jwtConfig(cfg)
	jc.Filter = func(c *fiber.Ctx) bool {
		return hasAdminToken(c, cfg)
	}
	return jwtware.New(jc)
}

func hasAdminToken(c *fiber.Ctx, cfg *config.Config) bool {
	return cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken
}

func jwtConfig(cfg *config.Config) jwtware.Config {
	return jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	}
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, ok := claimsFrom(c)
	if !ok {
		return uuid.Nil, errors.New("invalid token in context")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, errors.New("missing sub claim")
	}

	return uuid.Parse(sub)
}
