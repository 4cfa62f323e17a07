package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/slidecraft/slidecraft-backend/internal/database/repository"
	"github.com/slidecraft/slidecraft-backend/internal/models"
)

// Builtin layout groups. Unordered groups need structure generation; ordered
// groups map outline position to layout position directly.
var builtinLayouts = map[string]models.PresentationLayout{
	"general": {
		Name:    "general",
		Ordered: false,
		Slides: []models.SlideLayout{
			{ID: "general-intro", Name: "Intro"},
			{ID: "general-bullet-points", Name: "Bullet Points"},
			{ID: "general-two-column", Name: "Two Column"},
			{ID: "general-image-left", Name: "Image Left"},
			{ID: "general-image-right", Name: "Image Right"},
			{ID: "general-table-of-contents-list", Name: "Table of Contents"},
			{ID: "general-quote", Name: "Quote"},
			{ID: "general-conclusion", Name: "Conclusion"},
		},
	},
	"classic": {
		Name:    "classic",
		Ordered: false,
		Slides: []models.SlideLayout{
			{ID: "classic-title", Name: "Title"},
			{ID: "classic-content", Name: "Content"},
			{ID: "classic-list", Name: "List"},
			{ID: "classic-media", Name: "Media"},
			{ID: "classic-closing", Name: "Closing"},
		},
	},
	"modern": {
		Name:    "modern",
		Ordered: true,
		Slides: []models.SlideLayout{
			{ID: "modern-opening", Name: "Opening"},
			{ID: "modern-agenda-list", Name: "Agenda"},
			{ID: "modern-section", Name: "Section"},
			{ID: "modern-detail", Name: "Detail"},
			{ID: "modern-summary", Name: "Summary"},
		},
	},
}

// LayoutService resolves template identifiers to layout groups: builtin
// templates by name, custom templates by "custom-<id>" lookup.
type LayoutService struct {
	templateRepo *repository.TemplateRepository
}

func NewLayoutService(templateRepo *repository.TemplateRepository) *LayoutService {
	return &LayoutService{templateRepo: templateRepo}
}

// BuiltinTemplateNames lists the always-available template identifiers
func BuiltinTemplateNames() []string {
	return []string{"general", "classic", "modern"}
}

// GetLayoutByName resolves a template identifier to its layout group.
// Unknown identifiers fail with a ValidationError before any stage runs.
func (s *LayoutService) GetLayoutByName(template string) (*models.PresentationLayout, error) {
	if layout, ok := builtinLayouts[template]; ok {
		resolved := layout
		return &resolved, nil
	}

	template = strings.ToLower(template)
	if !strings.HasPrefix(template, "custom-") {
		return nil, models.NewValidationError("Template not found. Please use a valid template.")
	}

	templateID := strings.TrimPrefix(template, "custom-")
	record, err := s.templateRepo.GetByID(templateID)
	if err != nil {
		return nil, models.NewValidationError("Template not found. Please use a valid template.")
	}

	layout := record.Layout
	if layout.Name == "" {
		layout.Name = record.Name
	}
	if len(layout.Slides) == 0 {
		return nil, models.NewValidationError("Template has no slide layouts")
	}
	return &layout, nil
}

// SaveTemplate stores a custom layout group. It becomes addressable as
// "custom-<id>" everywhere a template name is accepted.
func (s *LayoutService) SaveTemplate(userID *string, template *models.Template) (*models.Template, error) {
	if template.Name == "" {
		return nil, models.NewValidationError("Template name is required")
	}
	if len(template.Layout.Slides) == 0 {
		return nil, models.NewValidationError("Template layout must have at least one slide layout")
	}

	template.ID = uuid.NewString()
	template.UserID = userID
	if err := s.templateRepo.Create(template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	return template, nil
}

// ListTemplates returns all stored custom templates
func (s *LayoutService) ListTemplates() ([]*models.Template, error) {
	return s.templateRepo.GetAll()
}

// DeleteTemplate removes a custom template, enforcing ownership
func (s *LayoutService) DeleteTemplate(userID *string, id string) error {
	template, err := s.templateRepo.GetByID(id)
	if err != nil {
		return models.NewNotFoundError("Template not found")
	}
	if userID != nil && template.UserID != nil && *template.UserID != *userID {
		return models.NewAuthorizationError("You don't have permission to delete this template")
	}
	return s.templateRepo.Delete(id)
}
