package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Photo is a travel photo owned by exactly one user. Location is a plain name
// string, not a reference to the locations catalog.
type Photo struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string     `gorm:"type:text;not null" json:"image_url"`
	ImageKey    *string    `gorm:"size:255" json:"-"`
	Location    *string    `gorm:"size:255;index" json:"location,omitempty"`
	DateTaken   *time.Time `gorm:"index" json:"date_taken,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Tags        []Tag      `gorm:"many2many:photo_tags;" json:"tags"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasTag reports whether one of the photo's tags is named exactly name.
func (p *Photo) HasTag(name string) bool {
	for _, t := range p.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}
