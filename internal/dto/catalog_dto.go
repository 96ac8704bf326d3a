package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/travel-gallery/internal/models"
)

type TagResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTagResponses(tags []models.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagResponse{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt})
	}
	return out
}

type LocationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewLocationResponses(locations []models.Location) []LocationResponse {
	out := make([]LocationResponse, 0, len(locations))
	for _, l := range locations {
		out = append(out, LocationResponse{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt})
	}
	return out
}
