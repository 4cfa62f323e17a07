package models

import (
	"time"

	"github.com/google/uuid"
)

// Slide belongs to exactly one presentation. Index is dense and 0-based;
// editing a slide always produces a new row identity while keeping the index,
// so index, not id, is the stable "same position" key across revisions.
type Slide struct {
	ID             string  `json:"id" gorm:"primaryKey;type:uuid"`
	PresentationID string  `json:"presentation_id" gorm:"not null;index;type:uuid"`
	UserID         *string `json:"user_id,omitempty" gorm:"index;type:uuid"`
	LayoutGroup    string  `json:"layout_group" gorm:"type:varchar(255)"`
	Layout         string  `json:"layout" gorm:"type:varchar(255)"`
	Index          int     `json:"index" gorm:"column:slide_index;not null;index"`
	Content        JSON    `json:"content" gorm:"type:jsonb"`
	SpeakerNote    string  `json:"speaker_note,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Slide model
func (Slide) TableName() string {
	return "slides"
}

// NewRevision copies the slide into presentationID under a fresh identity.
// A nil content keeps the existing content (used by derive for untouched slides).
func (s *Slide) NewRevision(presentationID string, content JSON) *Slide {
	revision := *s
	revision.ID = uuid.NewString()
	revision.PresentationID = presentationID
	if content != nil {
		revision.Content = content
	}
	revision.CreatedAt = time.Time{}
	revision.UpdatedAt = time.Time{}
	return &revision
}

// SpeakerNoteFromContent pulls the reserved speaker note key out of generated content
func SpeakerNoteFromContent(content JSON) string {
	if note, ok := content["__speaker_note__"].(string); ok {
		return note
	}
	return ""
}
