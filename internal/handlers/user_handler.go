package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/services"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/validation"
)

type UserHandler struct {
	identities *services.IdentityService
	validator  *validation.Validator
}

func NewUserHandler(identities *services.IdentityService, v *validation.Validator) *UserHandler {
	return &UserHandler{identities: identities, validator: v}
}

// Sync links the session identity to a local user, creating one on first use.
func (h *UserHandler) Sync(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.SyncUserRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	if err := h.validator.Validate(req); err != nil {
		return respondError(c, err, "Failed to sync user")
	}

	username := req.Username
	if username == "" {
		username = identity.Username
	}

	// Only the signed email claim may match an existing account; the body
	// email is used when the token carries none.
	user, err := h.identities.GetOrCreate(c.UserContext(), identity.Subject, services.SyncProfile{
		VerifiedEmail: identity.Email,
		Email:         req.Email,
		Username:      h.validator.Text(username),
	})
	if err != nil {
		return respondError(c, err, "Failed to sync user")
	}
	return c.JSON(dto.NewUserResponse(user))
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.identities.Lookup(c.UserContext(), identity.Subject)
	if err != nil {
		return respondError(c, err, "Failed to fetch user")
	}
	return c.JSON(dto.NewUserResponse(user))
}
