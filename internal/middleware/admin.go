package middleware

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// adminPolicy decides who may call the moderation and reputation admin
// routes. Emails compare case-insensitively.
type adminPolicy struct {
	db      *gorm.DB
	emails  map[string]struct{}
	userIDs map[string]struct{}
}

func newAdminPolicy(db *gorm.DB, cfg *config.Config) *adminPolicy {
	return &adminPolicy{
		db:      db,
		emails:  listSet(cfg.AdminEmails, strings.ToLower),
		userIDs: listSet(cfg.AdminUserIDs, strings.ToLower),
	}
}

func (p *adminPolicy) isListed(email, sub string) bool {
	if _, ok := p.emails[strings.ToLower(email)]; ok && email != "" {
		return true
	}
	_, ok := p.userIDs[strings.ToLower(sub)]
	return ok && sub != ""
}

// hasAdminRole reports whether sub names an admin account that is not banned.
func (p *adminPolicy) hasAdminRole(ctx context.Context, sub string) bool {
	userID, err := uuid.Parse(sub)
	if err != nil {
		return false
	}
	var user models.User
	if err := p.db.WithContext(ctx).Select("role", "is_banned").First(&user, "id = ?", userID).Error; err != nil {
		return false
	}
	return user.Role == "admin" && !user.IsBanned
}

// AdminRequired admits the admin token, a JWT whose subject or email is in
// the configured lists, or a JWT for an unbanned admin account.
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	policy := newAdminPolicy(db, cfg)

	return func(c *fiber.Ctx) error {
		if hasAdminToken(c, cfg) {
			return c.Next()
		}

		claims, ok := claimsFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		email, _ := claims["email"].(string)
		sub, _ := claims["sub"].(string)

		if policy.isListed(email, sub) || policy.hasAdminRole(c.UserContext(), sub) {
			return c.Next()
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func claimsFrom(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}

// listSet splits a comma separated setting, dropping blanks.
func listSet(s string, normalize func(string) string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		if v := normalize(strings.TrimSpace(part)); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
