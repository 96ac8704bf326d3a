package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/services"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/session"
)

// respondError maps service errors onto status codes. Anything unexpected is
// logged and answered with the generic fallback message.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	status := fiber.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, services.ErrPhotoNotFound),
		errors.Is(err, services.ErrTagNotFound),
		errors.Is(err, services.ErrLocationNotFound),
		errors.Is(err, services.ErrUserNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrValidation):
		status, message = fiber.StatusBadRequest, "Validation failed: "+err.Error()
	case errors.Is(err, services.ErrTagExists),
		errors.Is(err, services.ErrLocationExists),
		errors.Is(err, services.ErrUserNotSynced),
		errors.Is(err, services.ErrIdentityConflict):
		status, message = fiber.StatusConflict, err.Error()
	}

	if status == fiber.StatusInternalServerError {
		slog.Error(fallback,
			"error", err.Error(),
			"request_id", requestID(c),
			"action", c.Method()+" "+c.Route().Path,
		)
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

// currentIdentity reads the caller verified by the JWT middleware.
func currentIdentity(c *fiber.Ctx) (session.Identity, bool) {
	identity, err := session.FromContext(c)
	if err != nil {
		return session.Identity{}, false
	}
	return identity, true
}

func parseIDParam(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// ErrorHandler renders errors that escaped the handlers, including fiber's
// own 404 and body limit errors, in the API error format.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}
