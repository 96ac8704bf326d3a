package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/database"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/dto"
)

type HealthHandler struct {
	db            *gorm.DB
	storageDriver string
}

func NewHealthHandler(db *gorm.DB, storageDriver string) *HealthHandler {
	return &HealthHandler{db: db, storageDriver: storageDriver}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Storage:   h.storageDriver,
	})
}
