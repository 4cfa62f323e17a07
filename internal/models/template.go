package models

import (
	"time"
)

// Template is a user-defined layout group, addressable as "custom-<id>"
type Template struct {
	ID          string             `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      *string            `json:"user_id,omitempty" gorm:"index;type:uuid"`
	Name        string             `json:"name" gorm:"type:varchar(255);not null"`
	Description string             `json:"description,omitempty" gorm:"type:text"`
	Layout      PresentationLayout `json:"layout" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Template model
func (Template) TableName() string {
	return "templates"
}
