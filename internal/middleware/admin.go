package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/config"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/session"
)

// AdminRequired guards catalog maintenance routes. A request passes with:
// 1. the configured X-Admin-Token header
// 2. a session whose email or subject is in the configured admin lists
// 3. a session whose local user has the admin role
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	adminEmails := parseCSV(strings.ToLower(cfg.AdminEmails))
	adminUserIDs := parseCSV(cfg.AdminUserIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		identity, err := session.FromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if contains(adminEmails, strings.ToLower(identity.Email)) || contains(adminUserIDs, identity.Subject) {
			return c.Next()
		}

		var user models.User
		err = db.WithContext(c.UserContext()).
			Where("external_id = ?", identity.Subject).
			First(&user).Error
		if err == nil && user.Role == models.RoleAdmin {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	if val == "" {
		return false
	}
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
