package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/dto"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/gallery"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/services"
)

type PhotoHandler struct {
	photos  *services.PhotoService
	uploads *services.UploadService
	metrics *metrics.Collector
}

func NewPhotoHandler(photos *services.PhotoService, uploads *services.UploadService, collector *metrics.Collector) *PhotoHandler {
	return &PhotoHandler{photos: photos, uploads: uploads, metrics: collector}
}

// List returns the caller's photos, optionally narrowed by
// ?tag=&location=&date_from=&date_to=.
func (h *PhotoHandler) List(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	filter, err := gallery.ParseFilter(c.Query("tag"), c.Query("location"), c.Query("date_from"), c.Query("date_to"))
	if err != nil {
		return badRequest(c, "Invalid filter: "+err.Error())
	}

	photos, err := h.photos.List(c.UserContext(), identity.Subject)
	if err != nil {
		return respondError(c, err, "Failed to fetch photos")
	}

	return c.JSON(dto.NewPhotoResponses(gallery.Apply(photos, filter)))
}

func (h *PhotoHandler) Get(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid photo ID")
	}

	photo, err := h.photos.Get(c.UserContext(), id, identity.Subject)
	if err != nil {
		return respondError(c, err, "Failed to fetch photo")
	}
	return c.JSON(dto.NewPhotoResponse(photo))
}

func (h *PhotoHandler) Create(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	var req dto.CreatePhotoData
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	photo, err := h.photos.Create(c.UserContext(), req, identity.Subject)
	if err != nil {
		return respondError(c, err, "Failed to create photo")
	}

	h.metrics.RecordPhotoCreated()
	return c.Status(fiber.StatusCreated).JSON(dto.NewPhotoResponse(photo))
}

func (h *PhotoHandler) Update(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid photo ID")
	}

	var req dto.UpdatePhotoData
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	photo, err := h.photos.Update(c.UserContext(), id, req, identity.Subject)
	if err != nil {
		return respondError(c, err, "Failed to update photo")
	}
	return c.JSON(dto.NewPhotoResponse(photo))
}

// Delete removes the photo and then, best effort, its stored image.
func (h *PhotoHandler) Delete(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := parseIDParam(c)
	if !ok {
		return badRequest(c, "Invalid photo ID")
	}

	photo, err := h.photos.Delete(c.UserContext(), id, identity.Subject)
	if err != nil {
		return respondError(c, err, "Failed to delete photo")
	}

	h.uploads.RemoveImage(c.UserContext(), photo)
	h.metrics.RecordPhotoDeleted()
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Upload accepts multipart "images" files plus an optional "metadata" field
// holding a JSON array matched to the files by position.
func (h *PhotoHandler) Upload(c *fiber.Ctx) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return unauthorized(c)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "Expected a multipart form")
	}

	files := form.File["images"]
	if len(files) == 0 {
		return badRequest(c, "At least one file in images is required")
	}

	var metadata []dto.UploadMetadata
	if raw := form.Value["metadata"]; len(raw) > 0 && raw[0] != "" {
		if err := json.Unmarshal([]byte(raw[0]), &metadata); err != nil {
			return badRequest(c, "metadata must be a JSON array")
		}
	}
	if len(metadata) > len(files) {
		return badRequest(c, "metadata has more entries than images")
	}

	items := make([]services.UploadItem, 0, len(files))
	opened := make([]multipart.File, 0, len(files))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return respondError(c, err, "Failed to read upload")
		}
		opened = append(opened, f)

		item := services.UploadItem{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		}
		if i < len(metadata) {
			item.Metadata = metadata[i]
		}
		items = append(items, item)
	}

	result, err := h.uploads.UploadBatch(c.UserContext(), identity.Subject, items)
	if err != nil {
		return respondError(c, err, "Failed to upload photos")
	}

	resp := dto.BatchUploadResponse{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Items:     make([]dto.UploadItemResult, 0, len(result.Items)),
	}
	for _, outcome := range result.Items {
		item := dto.UploadItemResult{Filename: outcome.Filename, Success: outcome.Err == nil}
		if outcome.Err != nil {
			item.Error = uploadErrorMessage(outcome.Err)
		} else {
			photo := dto.NewPhotoResponse(outcome.Photo)
			item.Photo = &photo
		}
		resp.Items = append(resp.Items, item)
	}

	return c.JSON(resp)
}

// uploadErrorMessage exposes validation problems and hides everything else.
func uploadErrorMessage(err error) string {
	if errors.Is(err, services.ErrValidation) {
		return err.Error()
	}
	return "upload failed"
}
