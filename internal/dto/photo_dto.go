package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
)

const dateLayout = "2006-01-02"

type CreatePhotoData struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"max=5000"`
	ImageURL    string   `json:"image_url" validate:"required,imageref"`
	Location    string   `json:"location" validate:"max=255"`
	DateTaken   string   `json:"date_taken"`
	Tags        []string `json:"tags" validate:"max=50,dive,max=100"`
}

// UpdatePhotoData carries only the fields present in the request body.
// An empty description, location or date_taken clears it; a present tags
// array, even an empty one, replaces the whole set.
type UpdatePhotoData struct {
	Title       *string   `json:"title" validate:"omitnil,max=255"`
	Description *string   `json:"description" validate:"omitnil,max=5000"`
	ImageURL    *string   `json:"image_url" validate:"omitnil,imageref"`
	Location    *string   `json:"location" validate:"omitnil,max=255"`
	DateTaken   *string   `json:"date_taken"`
	Tags        *[]string `json:"tags" validate:"omitnil,max=50,dive,max=100"`
}

type PhotoResponse struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	ImageURL    string        `json:"image_url"`
	Location    *string       `json:"location,omitempty"`
	DateTaken   *string       `json:"date_taken,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Tags        []TagResponse `json:"tags"`
}

func NewPhotoResponse(p *models.Photo) PhotoResponse {
	resp := PhotoResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Location:    p.Location,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Tags:        NewTagResponses(p.Tags),
	}
	if p.DateTaken != nil {
		d := p.DateTaken.UTC().Format(dateLayout)
		resp.DateTaken = &d
	}
	return resp
}

func NewPhotoResponses(photos []models.Photo) []PhotoResponse {
	out := make([]PhotoResponse, 0, len(photos))
	for i := range photos {
		out = append(out, NewPhotoResponse(&photos[i]))
	}
	return out
}

// UploadMetadata describes one file of a multipart batch upload, matched to
// the files by position.
type UploadMetadata struct {
	Title       string   `json:"title" validate:"max=255"`
	Description string   `json:"description" validate:"max=5000"`
	Location    string   `json:"location" validate:"max=255"`
	DateTaken   string   `json:"date_taken"`
	Tags        []string `json:"tags" validate:"max=50,dive,max=100"`
}

type UploadItemResult struct {
	Filename string         `json:"filename"`
	Success  bool           `json:"success"`
	Photo    *PhotoResponse `json:"photo,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type BatchUploadResponse struct {
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Items     []UploadItemResult `json:"items"`
}
