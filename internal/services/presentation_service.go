package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/slidecraft/slidecraft-backend/internal/database/repository"
	"github.com/slidecraft/slidecraft-backend/internal/models"
	"github.com/slidecraft/slidecraft-backend/internal/utils"
)

// PresentationService owns the presentation lifecycle outside of full
// generation runs: the create/prepare flow, reads, edits and re-exports.
type PresentationService struct {
	presentationRepo *repository.PresentationRepository
	slideRepo        *repository.SlideRepository
	structureService *StructureService
	exportService    *ExportService
}

func NewPresentationService(
	presentationRepo *repository.PresentationRepository,
	slideRepo *repository.SlideRepository,
	structureService *StructureService,
	exportService *ExportService,
) *PresentationService {
	return &PresentationService{
		presentationRepo: presentationRepo,
		slideRepo:        slideRepo,
		structureService: structureService,
		exportService:    exportService,
	}
}

// Create persists a presentation shell. Outlines and structure are attached
// later by Prepare, so the shell only captures the generation inputs.
func (s *PresentationService) Create(userID *string, req *models.CreatePresentationRequest) (*models.Presentation, error) {
	if req.IncludeTableOfContents && req.NSlides < 3 {
		return nil, models.NewValidationError("Number of slides cannot be less than 3 if table of contents is included")
	}

	includeTitleSlide := true
	if req.IncludeTitleSlide != nil {
		includeTitleSlide = *req.IncludeTitleSlide
	}

	outlineModel := req.Model
	if outlineModel == nil {
		outlineModel = models.DefaultContentModel()
	}

	presentation := &models.Presentation{
		ID:                     uuid.NewString(),
		UserID:                 userID,
		Content:                req.Content,
		NSlides:                req.NSlides,
		Language:               req.Language,
		FilePaths:              req.FilePaths,
		Tone:                   optional(req.Tone),
		Verbosity:              optional(req.Verbosity),
		Instructions:           optional(req.Instructions),
		IncludeTableOfContents: req.IncludeTableOfContents,
		IncludeTitleSlide:      includeTitleSlide,
		WebSearch:              req.WebSearch,
		OutlineModel:           outlineModel,
	}

	if err := s.presentationRepo.Create(presentation); err != nil {
		return nil, fmt.Errorf("failed to create presentation: %w", err)
	}
	logrus.Infof("Created presentation %s", presentation.ID)
	return presentation, nil
}

// Prepare attaches outlines and a layout to a created presentation and
// computes its structure, including table of contents injection when the
// presentation asked for one. After Prepare the presentation is streamable.
func (s *PresentationService) Prepare(ctx context.Context, userID *string, apiKey string, req *models.PreparePresentationRequest) (*models.Presentation, error) {
	if len(req.Outlines) == 0 {
		return nil, models.NewValidationError("Outlines are required")
	}

	presentation, err := s.getOwned(req.PresentationID, userID, "modify")
	if err != nil {
		return nil, err
	}

	outlines := models.SlideOutlineList(req.Outlines)
	layout := req.Layout

	contentModel := req.Model
	if contentModel == nil {
		contentModel = models.DefaultContentModel()
	}
	imageModel := req.ImageModel
	if imageModel == nil {
		imageModel = models.DefaultImageModel()
	}

	instructions := ""
	if presentation.Instructions != nil {
		instructions = *presentation.Instructions
	}

	structure, err := s.structureService.Assign(ctx, outlines, &layout, instructions, contentModel, apiKey)
	if err != nil {
		return nil, err
	}

	if presentation.IncludeTableOfContents {
		structure, outlines = s.structureService.InjectTableOfContents(
			structure, outlines, &layout, presentation.NSlides, presentation.IncludeTitleSlide,
		)
	}

	presentation.ContentModel = contentModel
	presentation.ImageModel = imageModel
	presentation.Outlines = outlines
	presentation.Layout = &layout
	presentation.Structure = structure
	if req.Title != "" {
		presentation.Title = &req.Title
	}

	if err := s.presentationRepo.Update(presentation); err != nil {
		return nil, fmt.Errorf("failed to save prepared presentation: %w", err)
	}
	return presentation, nil
}

// Get returns a presentation with its slides in index order.
func (s *PresentationService) Get(userID *string, id string) (*models.PresentationWithSlides, error) {
	presentation, err := s.getOwned(id, userID, "access")
	if err != nil {
		return nil, err
	}
	slides, err := s.slideRepo.GetByPresentationID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load slides: %w", err)
	}
	return &models.PresentationWithSlides{Presentation: *presentation, Slides: slides}, nil
}

// List returns one page of the user's presentations, newest first, together
// with pagination metadata. Each entry carries only its first slide, which is
// enough for a thumbnail view.
func (s *PresentationService) List(userID string, page, pageSize int) ([]*models.PresentationWithSlides, utils.PaginationResponse, error) {
	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)

	total, err := s.presentationRepo.CountByUserID(userID)
	if err != nil {
		return nil, utils.PaginationResponse{}, fmt.Errorf("failed to count presentations: %w", err)
	}

	presentations, err := s.presentationRepo.GetByUserIDPaginated(userID, pageSize, utils.CalculateOffset(page, pageSize))
	if err != nil {
		return nil, utils.PaginationResponse{}, fmt.Errorf("failed to list presentations: %w", err)
	}

	entries := make([]*models.PresentationWithSlides, 0, len(presentations))
	for _, presentation := range presentations {
		firstSlide, err := s.slideRepo.GetFirstSlide(presentation.ID)
		if err != nil {
			return nil, utils.PaginationResponse{}, fmt.Errorf("failed to load first slide: %w", err)
		}
		entry := &models.PresentationWithSlides{Presentation: *presentation}
		if firstSlide != nil {
			entry.Slides = []*models.Slide{firstSlide}
		}
		entries = append(entries, entry)
	}

	return entries, utils.CalculatePaginationInfo(int(total), page, pageSize), nil
}

// Update patches the presentation's title or slide count, and optionally
// replaces the whole slide set.
func (s *PresentationService) Update(userID *string, req *models.UpdatePresentationRequest) (*models.PresentationWithSlides, error) {
	presentation, err := s.getOwned(req.ID, userID, "modify")
	if err != nil {
		return nil, err
	}

	if req.NSlides != nil {
		presentation.NSlides = *req.NSlides
	}
	if req.Title != nil {
		presentation.Title = req.Title
	}
	if req.NSlides != nil || req.Title != nil {
		if err := s.presentationRepo.Update(presentation); err != nil {
			return nil, fmt.Errorf("failed to update presentation: %w", err)
		}
	}

	slides := req.Slides
	if len(slides) > 0 {
		for _, slide := range slides {
			slide.PresentationID = presentation.ID
		}
		if err := s.slideRepo.ReplaceAll(presentation.ID, slides); err != nil {
			return nil, fmt.Errorf("failed to replace slides: %w", err)
		}
	} else {
		slides = []*models.Slide{}
	}

	return &models.PresentationWithSlides{Presentation: *presentation, Slides: slides}, nil
}

// Delete removes a presentation and its slides.
func (s *PresentationService) Delete(userID *string, id string) error {
	if _, err := s.getOwned(id, userID, "delete"); err != nil {
		return err
	}
	return s.presentationRepo.Delete(id)
}

// Edit applies partial content overrides to the matching slides in place.
// Every touched slide gets a fresh row identity at the same index; untouched
// slides keep theirs. The updated deck is re-exported.
func (s *PresentationService) Edit(ctx context.Context, userID *string, req *models.EditPresentationRequest) (*models.PathAndEditPath, error) {
	presentation, err := s.getOwned(req.PresentationID, userID, "edit")
	if err != nil {
		return nil, err
	}

	slides, err := s.slideRepo.GetByPresentationID(presentation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slides: %w", err)
	}

	var oldIDs []string
	var revisions []*models.Slide
	updated := make([]*models.Slide, 0, len(slides))
	for _, slide := range slides {
		edit := findEdit(req.Slides, slide.Index)
		if edit == nil {
			updated = append(updated, slide)
			continue
		}
		revision := slide.NewRevision(presentation.ID, utils.DeepMerge(slide.Content, edit.Content))
		revision.SpeakerNote = models.SpeakerNoteFromContent(revision.Content)
		oldIDs = append(oldIDs, slide.ID)
		revisions = append(revisions, revision)
		updated = append(updated, revision)
	}

	if len(revisions) > 0 {
		if err := s.slideRepo.SupersedeRevisions(oldIDs, revisions); err != nil {
			return nil, fmt.Errorf("failed to save slide revisions: %w", err)
		}
	}

	return s.exportResult(ctx, presentation, updated, req.ExportAs)
}

// Derive copies the presentation and all its slides under fresh identities,
// applying the given overrides to the copy. The source deck is untouched.
func (s *PresentationService) Derive(ctx context.Context, userID *string, req *models.EditPresentationRequest) (*models.PathAndEditPath, error) {
	presentation, err := s.getOwned(req.PresentationID, userID, "derive from")
	if err != nil {
		return nil, err
	}

	slides, err := s.slideRepo.GetByPresentationID(presentation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slides: %w", err)
	}

	derived := presentation.NewDerived()
	derivedSlides := make([]*models.Slide, 0, len(slides))
	for _, slide := range slides {
		var content models.JSON
		if edit := findEdit(req.Slides, slide.Index); edit != nil {
			content = utils.DeepMerge(slide.Content, edit.Content)
		}
		revision := slide.NewRevision(derived.ID, content)
		revision.SpeakerNote = models.SpeakerNoteFromContent(revision.Content)
		derivedSlides = append(derivedSlides, revision)
	}

	if err := s.presentationRepo.Create(derived); err != nil {
		return nil, fmt.Errorf("failed to create derived presentation: %w", err)
	}
	if err := s.slideRepo.CreateAll(derivedSlides); err != nil {
		return nil, fmt.Errorf("failed to create derived slides: %w", err)
	}

	return s.exportResult(ctx, derived, derivedSlides, req.ExportAs)
}

// Export re-exports an already committed presentation.
func (s *PresentationService) Export(ctx context.Context, userID *string, req *models.ExportPresentationRequest) (*models.PathAndEditPath, error) {
	presentation, err := s.getOwned(req.ID, userID, "export")
	if err != nil {
		return nil, err
	}
	slides, err := s.slideRepo.GetByPresentationID(presentation.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slides: %w", err)
	}
	return s.exportResult(ctx, presentation, slides, req.ExportAs)
}

func (s *PresentationService) exportResult(ctx context.Context, presentation *models.Presentation, slides []*models.Slide, format string) (*models.PathAndEditPath, error) {
	path, err := s.exportService.Export(ctx, presentation, slides, format)
	if err != nil {
		return nil, err
	}
	return &models.PathAndEditPath{
		Path:     path,
		EditPath: s.exportService.EditPath(presentation.ID),
	}, nil
}

// getOwned loads a presentation and enforces ownership when both the caller
// and the record carry a user id.
func (s *PresentationService) getOwned(id string, userID *string, action string) (*models.Presentation, error) {
	presentation, err := s.presentationRepo.GetByID(id)
	if err != nil {
		return nil, models.NewNotFoundError("Presentation not found")
	}
	if userID != nil && presentation.UserID != nil && *presentation.UserID != *userID {
		return nil, models.NewAuthorizationError(fmt.Sprintf("You don't have permission to %s this presentation", action))
	}
	return presentation, nil
}

func findEdit(edits []models.SlideEdit, index int) *models.SlideEdit {
	for i := range edits {
		if edits[i].Index == index {
			return &edits[i]
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
