package models

import (
	"time"

	"github.com/google/uuid"
)

// Presentation is the aggregate root for a generated slide deck
type Presentation struct {
	ID       string  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID   *string `json:"user_id,omitempty" gorm:"index;type:uuid"`
	Content  string  `json:"content" gorm:"type:text"`
	NSlides  int     `json:"n_slides" gorm:"not null"`
	Language string  `json:"language" gorm:"type:varchar(50)"`
	Title    *string `json:"title,omitempty" gorm:"type:varchar(255)"`

	FilePaths StringList          `json:"file_paths,omitempty" gorm:"type:jsonb"`
	Outlines  SlideOutlineList    `json:"outlines,omitempty" gorm:"type:jsonb"`
	Layout    *PresentationLayout `json:"layout,omitempty" gorm:"type:jsonb"`
	Structure Structure           `json:"structure,omitempty" gorm:"type:jsonb"`

	Tone         *string `json:"tone,omitempty" gorm:"type:varchar(50)"`
	Verbosity    *string `json:"verbosity,omitempty" gorm:"type:varchar(50)"`
	Instructions *string `json:"instructions,omitempty" gorm:"type:text"`

	IncludeTableOfContents bool `json:"include_table_of_contents" gorm:"default:false"`
	IncludeTitleSlide      bool `json:"include_title_slide" gorm:"default:true"`
	WebSearch              bool `json:"web_search" gorm:"default:false"`

	OutlineModel *ModelSpec `json:"outline_model,omitempty" gorm:"type:jsonb"`
	ContentModel *ModelSpec `json:"content_model,omitempty" gorm:"type:jsonb"`
	ImageModel   *ModelSpec `json:"image_model,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Presentation model
func (Presentation) TableName() string {
	return "presentations"
}

// NewDerived copies the presentation under a fresh identity. Slides are copied
// separately so the new deck can be selectively merged without touching the source.
func (p *Presentation) NewDerived() *Presentation {
	derived := *p
	derived.ID = uuid.NewString()
	derived.CreatedAt = time.Time{}
	derived.UpdatedAt = time.Time{}
	return &derived
}

// CreatePresentationRequest creates a presentation shell (outline/structure absent)
type CreatePresentationRequest struct {
	Content                string     `json:"content" binding:"required"`
	NSlides                int        `json:"n_slides" binding:"required,min=1" example:"8"`
	Language               string     `json:"language" binding:"required" example:"en"`
	FilePaths              []string   `json:"file_paths,omitempty"`
	Tone                   string     `json:"tone,omitempty" example:"professional"`
	Verbosity              string     `json:"verbosity,omitempty" example:"standard"`
	Instructions           string     `json:"instructions,omitempty"`
	IncludeTableOfContents bool       `json:"include_table_of_contents"`
	IncludeTitleSlide      *bool      `json:"include_title_slide,omitempty"`
	WebSearch              bool       `json:"web_search"`
	Model                  *ModelSpec `json:"model,omitempty"`
}

// PreparePresentationRequest attaches outline, layout and structure to a presentation
type PreparePresentationRequest struct {
	PresentationID string             `json:"presentation_id" binding:"required"`
	Outlines       []SlideOutline     `json:"outlines" binding:"required"`
	Layout         PresentationLayout `json:"layout" binding:"required"`
	Model          *ModelSpec         `json:"model,omitempty"`
	ImageModel     *ModelSpec         `json:"image_model,omitempty"`
	Title          string             `json:"title,omitempty"`
}

// GeneratePresentationRequest drives the end-to-end generation pipeline
type GeneratePresentationRequest struct {
	Content                string     `json:"content"`
	SlidesMarkdown         []string   `json:"slides_markdown,omitempty"`
	Files                  []string   `json:"files,omitempty"`
	NSlides                int        `json:"n_slides" example:"10"`
	Language               string     `json:"language" example:"en"`
	Template               string     `json:"template" example:"general"`
	Tone                   string     `json:"tone,omitempty"`
	Verbosity              string     `json:"verbosity,omitempty"`
	Instructions           string     `json:"instructions,omitempty"`
	IncludeTableOfContents bool       `json:"include_table_of_contents"`
	IncludeTitleSlide      *bool      `json:"include_title_slide,omitempty"`
	WebSearch              bool       `json:"web_search"`
	Model                  *ModelSpec `json:"model,omitempty"`
	ImageModel             *ModelSpec `json:"image_model,omitempty"`
	ExportAs               string     `json:"export_as" example:"pptx"`
}

// TitleSlideIncluded resolves the optional flag (defaults to true, as a deck
// normally opens with a title slide)
func (r *GeneratePresentationRequest) TitleSlideIncluded() bool {
	if r.IncludeTitleSlide == nil {
		return true
	}
	return *r.IncludeTitleSlide
}

// SlideEdit is a partial slide content override, keyed by slide index
type SlideEdit struct {
	Index   int  `json:"index"`
	Content JSON `json:"content"`
}

// EditPresentationRequest applies partial slide edits (in place or as a derived copy)
type EditPresentationRequest struct {
	PresentationID string      `json:"presentation_id" binding:"required"`
	Slides         []SlideEdit `json:"slides" binding:"required"`
	ExportAs       string      `json:"export_as" example:"pptx"`
}

// UpdatePresentationRequest patches title, slide count or the full slide set
type UpdatePresentationRequest struct {
	ID      string   `json:"id" binding:"required"`
	NSlides *int     `json:"n_slides,omitempty"`
	Title   *string  `json:"title,omitempty"`
	Slides  []*Slide `json:"slides,omitempty"`
}

// ExportPresentationRequest re-exports a committed presentation
type ExportPresentationRequest struct {
	ID       string `json:"id" binding:"required"`
	ExportAs string `json:"export_as" example:"pptx"`
}

// PresentationWithSlides is the read model returned by fetch, list and stream
// endpoints. Listings carry only the first slide.
type PresentationWithSlides struct {
	Presentation
	Slides []*Slide `json:"slides"`
}

// PathAndEditPath is the terminal payload of a generation or export run
type PathAndEditPath struct {
	Path     string `json:"path" example:"/app_data/exports/deck.pptx"`
	EditPath string `json:"edit_path" example:"/presentation?id=..."`
}
