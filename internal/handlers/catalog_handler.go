package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/services"
)

type TagHandler struct {
	tags *services.TagService
}

func NewTagHandler(tags *services.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

func (h *TagHandler) List(c *fiber.Ctx) error {
	tags, err := h.tags.GetAllTags(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch tags")
	}
	return c.JSON(dto.NewTagResponses(tags))
}

func (h *TagHandler) Create(c *fiber.Ctx) error {
	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	tag, err := h.tags.CreateTag(c.UserContext(), req.Name)
	if err != nil {
		return respondError(c, err, "Failed to create tag")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TagResponse{ID: tag.ID, Name: tag.Name, CreatedAt: tag.CreatedAt})
}

func (h *TagHandler) Update(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid tag ID")
	}

	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	tag, err := h.tags.UpdateTag(c.UserContext(), id, req.Name)
	if err != nil {
		return respondError(c, err, "Failed to update tag")
	}
	return c.JSON(dto.TagResponse{ID: tag.ID, Name: tag.Name, CreatedAt: tag.CreatedAt})
}

func (h *TagHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid tag ID")
	}

	if err := h.tags.DeleteTag(c.UserContext(), id); err != nil {
		return respondError(c, err, "Failed to delete tag")
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

type LocationHandler struct {
	locations *services.LocationService
}

func NewLocationHandler(locations *services.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

func (h *LocationHandler) List(c *fiber.Ctx) error {
	locations, err := h.locations.GetAllLocations(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to fetch locations")
	}
	return c.JSON(dto.NewLocationResponses(locations))
}

func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	location, err := h.locations.CreateLocation(c.UserContext(), req.Name)
	if err != nil {
		return respondError(c, err, "Failed to create location")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.LocationResponse{ID: location.ID, Name: location.Name, CreatedAt: location.CreatedAt})
}

func (h *LocationHandler) Update(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid location ID")
	}

	var req dto.NameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	location, err := h.locations.UpdateLocation(c.UserContext(), id, req.Name)
	if err != nil {
		return respondError(c, err, "Failed to update location")
	}
	return c.JSON(dto.LocationResponse{ID: location.ID, Name: location.Name, CreatedAt: location.CreatedAt})
}

func (h *LocationHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid location ID")
	}

	if err := h.locations.DeleteLocation(c.UserContext(), id); err != nil {
		return respondError(c, err, "Failed to delete location")
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
