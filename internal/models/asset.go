package models

import (
	"time"

	"github.com/google/uuid"
)

// Asset is a generated or uploaded image record. It is linked to a slide only
// by value inside the slide content, not by a durable foreign key.
type Asset struct {
	ID         string  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     *string `json:"user_id,omitempty" gorm:"index;type:uuid"`
	Path       string  `json:"path" gorm:"type:text;not null"`
	IsUploaded bool    `json:"is_uploaded" gorm:"default:false"`
	Metadata   JSON    `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

// NewAssetID returns a fresh asset identifier.
func NewAssetID() string {
	return uuid.NewString()
}

// TableName specifies the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}
