package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/slidecraft/slidecraft-backend/internal/database/repository"
	"github.com/slidecraft/slidecraft-backend/internal/models"
	"github.com/slidecraft/slidecraft-backend/internal/services/llm"
)

// slideBatchSize is how many slide contents are generated concurrently before
// the next batch starts. Asset fetches for a finished batch overlap with
// content generation of the following batches.
const slideBatchSize = 10

// GenerationService runs the end-to-end pipeline: outline generation,
// structure assignment, batched slide content generation with overlapped
// asset fetching, one-transaction persistence, export and outcome
// notification. The same pipeline backs the sync, async and streaming modes.
type GenerationService struct {
	presentationRepo *repository.PresentationRepository
	slideRepo        *repository.SlideRepository
	taskRepo         *repository.GenerationTaskRepository
	layoutService    *LayoutService
	structureService *StructureService
	llmClient        llm.Client
	imageService     *ImageService
	exportService    *ExportService
	webhookService   *WebhookService
	rabbitmqService  *RabbitMQService
	sseHub           *SSEHub
}

func NewGenerationService(
	presentationRepo *repository.PresentationRepository,
	slideRepo *repository.SlideRepository,
	taskRepo *repository.GenerationTaskRepository,
	layoutService *LayoutService,
	structureService *StructureService,
	llmClient llm.Client,
	imageService *ImageService,
	exportService *ExportService,
	webhookService *WebhookService,
	rabbitmqService *RabbitMQService,
	sseHub *SSEHub,
) *GenerationService {
	return &GenerationService{
		presentationRepo: presentationRepo,
		slideRepo:        slideRepo,
		taskRepo:         taskRepo,
		layoutService:    layoutService,
		structureService: structureService,
		llmClient:        llmClient,
		imageService:     imageService,
		exportService:    exportService,
		webhookService:   webhookService,
		rabbitmqService:  rabbitmqService,
		sseHub:           sseHub,
	}
}

// ValidateRequest rejects a generation request before any task is created.
func (s *GenerationService) ValidateRequest(req *models.GeneratePresentationRequest) error {
	if req.Content == "" && len(req.SlidesMarkdown) == 0 && len(req.Files) == 0 {
		return models.NewValidationError("Either content or slides markdown or files is required to generate presentation")
	}
	if req.NSlides <= 0 {
		return models.NewValidationError("Number of slides must be greater than 0")
	}
	if req.IncludeTableOfContents && req.NSlides < 3 {
		return models.NewValidationError("Number of slides cannot be less than 3 if table of contents is included")
	}
	if _, err := s.layoutService.GetLayoutByName(req.Template); err != nil {
		return err
	}
	return nil
}

// Generate runs the pipeline synchronously and returns the export result.
func (s *GenerationService) Generate(ctx context.Context, userID *string, apiKey string, req *models.GeneratePresentationRequest) (*models.PathAndEditPath, error) {
	if err := s.ValidateRequest(req); err != nil {
		return nil, err
	}

	response, err := s.run(ctx, nil, userID, apiKey, req)
	if err != nil {
		apiErr := models.NormalizeError(err)
		s.notifyOutcome(models.WebhookEventGenerationFailed, apiErr.ToJSON())
		return nil, apiErr
	}
	s.notifyOutcome(models.WebhookEventGenerationCompleted, response)
	return response, nil
}

// SubmitAsync validates the request, records a pending task and runs the
// pipeline in the background. The returned task is immediately pollable.
func (s *GenerationService) SubmitAsync(userID *string, apiKey string, req *models.GeneratePresentationRequest) (*models.GenerationTask, error) {
	if err := s.ValidateRequest(req); err != nil {
		return nil, err
	}

	task := &models.GenerationTask{
		ID:      uuid.NewString(),
		UserID:  userID,
		Status:  models.TaskStatusPending,
		Message: "Queued for generation",
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create generation task: %w", err)
	}

	// The run must outlive the submitting request
	go s.runAsync(context.Background(), task, userID, apiKey, req)

	return task, nil
}

func (s *GenerationService) runAsync(ctx context.Context, task *models.GenerationTask, userID *string, apiKey string, req *models.GeneratePresentationRequest) {
	response, err := s.run(ctx, task, userID, apiKey, req)
	if err != nil {
		apiErr := models.NormalizeError(err)
		logrus.Errorf("Generation task %s failed: %v", task.ID, err)

		task.Status = models.TaskStatusError
		task.Message = "Presentation generation failed"
		task.Error = apiErr.ToJSON()
		s.saveTask(task)

		s.notifyOutcome(models.WebhookEventGenerationFailed, apiErr.ToJSON())
		return
	}

	task.Status = models.TaskStatusCompleted
	task.Message = "Presentation generation completed"
	task.Result = models.JSON{"path": response.Path, "edit_path": response.EditPath}
	s.saveTask(task)

	s.notifyOutcome(models.WebhookEventGenerationCompleted, response)
}

// GetTask returns an async task for polling, with ownership enforced.
func (s *GenerationService) GetTask(userID *string, id string) (*models.GenerationTask, error) {
	task, err := s.taskRepo.GetByID(id)
	if err != nil {
		return nil, models.NewNotFoundError("No presentation generation task found")
	}
	if userID != nil && task.UserID != nil && *task.UserID != *userID {
		return nil, models.NewAuthorizationError("You don't have permission to access this task status")
	}
	return task, nil
}

// run executes the pipeline stages. Nothing is persisted until every slide
// and asset is ready, so a failed run leaves no partial presentation behind.
func (s *GenerationService) run(ctx context.Context, task *models.GenerationTask, userID *string, apiKey string, req *models.GeneratePresentationRequest) (*models.PathAndEditPath, error) {
	usingSlidesMarkdown := len(req.SlidesMarkdown) > 0
	if usingSlidesMarkdown {
		req.NSlides = len(req.SlidesMarkdown)
	}

	outlines, err := s.buildOutlines(ctx, task, apiKey, req, usingSlidesMarkdown)
	if err != nil {
		return nil, err
	}
	totalOutlines := len(outlines)
	logrus.Infof("Generated %d outlines for the presentation", totalOutlines)

	s.progress(task, "Selecting layout for each slide")

	layout, err := s.layoutService.GetLayoutByName(req.Template)
	if err != nil {
		return nil, err
	}

	contentModel := req.Model
	if contentModel == nil {
		contentModel = models.DefaultContentModel()
	}
	imageModel := req.ImageModel
	if imageModel == nil {
		imageModel = models.DefaultImageModel()
	}

	structure, err := s.structureService.Assign(ctx, outlines, layout, req.Instructions, contentModel, apiKey)
	if err != nil {
		return nil, err
	}

	if req.IncludeTableOfContents && !usingSlidesMarkdown {
		structure, outlines = s.structureService.InjectTableOfContents(
			structure, outlines, layout, req.NSlides, req.TitleSlideIncluded(),
		)
	}

	presentation := &models.Presentation{
		ID:                     uuid.NewString(),
		UserID:                 userID,
		Content:                req.Content,
		NSlides:                req.NSlides,
		Language:               req.Language,
		FilePaths:              req.Files,
		Outlines:               outlines,
		Layout:                 layout,
		Structure:              structure,
		Tone:                   optional(req.Tone),
		Verbosity:              optional(req.Verbosity),
		Instructions:           optional(req.Instructions),
		IncludeTableOfContents: req.IncludeTableOfContents,
		IncludeTitleSlide:      req.TitleSlideIncluded(),
		WebSearch:              req.WebSearch,
		ContentModel:           contentModel,
		ImageModel:             imageModel,
	}
	if title := models.TitleFromOutlines(outlines); title != "" {
		presentation.Title = &title
	}

	s.progress(task, "Generating slides")

	slides, assets, err := s.generateSlides(ctx, task, presentation, outlines, structure, apiKey, req)
	if err != nil {
		return nil, err
	}

	if err := s.presentationRepo.CommitGeneration(presentation, slides, assets); err != nil {
		return nil, fmt.Errorf("failed to commit generated presentation: %w", err)
	}

	s.progress(task, "Exporting presentation")

	path, err := s.exportService.Export(ctx, presentation, slides, req.ExportAs)
	if err != nil {
		return nil, err
	}

	return &models.PathAndEditPath{
		Path:     path,
		EditPath: s.exportService.EditPath(presentation.ID),
	}, nil
}

// buildOutlines produces the content outlines, either verbatim from the
// caller's markdown or by streaming them from the outline model. For a deck
// with a table of contents, fewer content outlines are generated so the deck
// still totals n_slides after ToC injection.
func (s *GenerationService) buildOutlines(ctx context.Context, task *models.GenerationTask, apiKey string, req *models.GeneratePresentationRequest, usingSlidesMarkdown bool) (models.SlideOutlineList, error) {
	if usingSlidesMarkdown {
		outlines := make(models.SlideOutlineList, 0, len(req.SlidesMarkdown))
		for _, markdown := range req.SlidesMarkdown {
			outlines = append(outlines, models.SlideOutline{Content: markdown})
		}
		return outlines, nil
	}

	s.progress(task, "Generating presentation outlines")

	additionalContext := s.loadFileContext(req.Files)

	nSlidesToGenerate := req.NSlides
	if req.IncludeTableOfContents {
		contentSlides := req.NSlides
		if req.TitleSlideIncluded() {
			contentSlides = req.NSlides - 1
		}
		neededTocCount := ceilDiv(contentSlides, tocSummarySpan)
		nSlidesToGenerate -= ceilDiv(req.NSlides-neededTocCount, tocSummarySpan)
	}

	var text strings.Builder
	chunks := s.llmClient.GenerateOutlines(ctx, llm.OutlineRequest{
		Content:           req.Content,
		NSlides:           nSlidesToGenerate,
		Language:          req.Language,
		AdditionalContext: additionalContext,
		Tone:              req.Tone,
		Verbosity:         req.Verbosity,
		Instructions:      req.Instructions,
		IncludeTitleSlide: req.TitleSlideIncluded(),
		WebSearch:         req.WebSearch,
		Model:             req.Model,
		APIKey:            apiKey,
	})
	for chunk := range chunks {
		if chunk.Err != nil {
			return nil, chunk.Err
		}
		text.WriteString(chunk.Text)
	}

	var parsed struct {
		Slides []models.SlideOutline `json:"slides"`
	}
	if err := json.Unmarshal([]byte(text.String()), &parsed); err != nil || len(parsed.Slides) == 0 {
		return nil, models.NewValidationError("Failed to generate presentation outlines. Please try again.")
	}

	outlines := models.SlideOutlineList(parsed.Slides)
	if len(outlines) > nSlidesToGenerate {
		outlines = outlines[:nSlidesToGenerate]
	}
	return outlines, nil
}

// generateSlides produces slide contents in batches. Each batch fans out on
// an errgroup; as soon as a batch is done its asset fetches start in the
// background so they overlap with the next batch. All fetches are awaited
// before returning, keeping the commit all-or-nothing.
func (s *GenerationService) generateSlides(ctx context.Context, task *models.GenerationTask, presentation *models.Presentation, outlines models.SlideOutlineList, structure models.Structure, apiKey string, req *models.GeneratePresentationRequest) ([]*models.Slide, []*models.Asset, error) {
	layout := presentation.Layout
	opts := llm.ContentOptions{
		Language:     req.Language,
		Tone:         req.Tone,
		Verbosity:    req.Verbosity,
		Instructions: req.Instructions,
		Model:        presentation.ContentModel,
		APIKey:       apiKey,
	}

	slides := make([]*models.Slide, len(structure))

	var assetWG sync.WaitGroup
	var assetMu sync.Mutex
	var assets []*models.Asset

	awaitAssets := func() {
		s.progress(task, "Fetching assets for slides")
		assetWG.Wait()
	}

	for start := 0; start < len(structure); start += slideBatchSize {
		end := start + slideBatchSize
		if end > len(structure) {
			end = len(structure)
		}
		logrus.Infof("Generating slides from %d to %d", start, end)

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			slideLayout := layout.Slides[structure[i]]
			g.Go(func() error {
				content, err := s.llmClient.GenerateSlideContent(gctx, slideLayout, outlines[i], opts)
				if err != nil {
					return err
				}
				slides[i] = &models.Slide{
					ID:             uuid.NewString(),
					PresentationID: presentation.ID,
					UserID:         presentation.UserID,
					LayoutGroup:    layout.Name,
					Layout:         slideLayout.ID,
					Index:          i,
					Content:        content,
					SpeakerNote:    models.SpeakerNoteFromContent(content),
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			// In-flight asset fetches must settle before bailing out
			awaitAssets()
			return nil, nil, err
		}

		for i := start; i < end; i++ {
			slide := slides[i]
			s.imageService.AttachPlaceholders(slide.Content)
			assetWG.Add(1)
			go func() {
				defer assetWG.Done()
				fetched := s.imageService.FetchSlideAssets(ctx, slide, presentation.ImageModel, apiKey)
				assetMu.Lock()
				assets = append(assets, fetched...)
				assetMu.Unlock()
			}()
		}
	}

	awaitAssets()
	return slides, assets, nil
}

// Stream runs slide content generation for a prepared presentation, emitting
// the growing slides document as SSE frames through send. Once streaming has
// begun, failures are reported as an error frame rather than a returned error
// and the structural closing tokens are withheld.
func (s *GenerationService) Stream(ctx context.Context, userID *string, apiKey string, presentationID string, send func([]byte) error) error {
	presentation, err := s.presentationRepo.GetByID(presentationID)
	if err != nil {
		return models.NewNotFoundError("Presentation not found")
	}
	if userID != nil && presentation.UserID != nil && *presentation.UserID != *userID {
		return models.NewAuthorizationError("You don't have permission to access this presentation")
	}
	if len(presentation.Structure) == 0 || presentation.Layout == nil {
		return models.NewValidationError("Presentation not prepared for stream")
	}
	if len(presentation.Outlines) == 0 {
		return models.NewValidationError("Outlines can not be empty")
	}

	layout := presentation.Layout
	opts := llm.ContentOptions{
		Language: presentation.Language,
		Model:    presentation.ContentModel,
		APIKey:   apiKey,
	}
	if presentation.Tone != nil {
		opts.Tone = *presentation.Tone
	}
	if presentation.Verbosity != nil {
		opts.Verbosity = *presentation.Verbosity
	}
	if presentation.Instructions != nil {
		opts.Instructions = *presentation.Instructions
	}

	if err := send(models.SSEStatusFrame("Generating slides")); err != nil {
		return err
	}
	if err := send(models.SSEChunkFrame(`{ "slides": [ `)); err != nil {
		return err
	}

	var assetWG sync.WaitGroup
	var assetMu sync.Mutex
	var assets []*models.Asset
	slides := make([]*models.Slide, 0, len(presentation.Structure))

	for i, layoutIndex := range presentation.Structure {
		slideLayout := layout.Slides[layoutIndex]
		content, err := s.llmClient.GenerateSlideContent(ctx, slideLayout, presentation.Outlines[i], opts)
		if err != nil {
			assetWG.Wait()
			return send(models.SSEErrorFrame(models.NormalizeError(err)))
		}

		slide := &models.Slide{
			ID:             uuid.NewString(),
			PresentationID: presentation.ID,
			UserID:         presentation.UserID,
			LayoutGroup:    layout.Name,
			Layout:         slideLayout.ID,
			Index:          i,
			Content:        content,
			SpeakerNote:    models.SpeakerNoteFromContent(content),
		}
		slides = append(slides, slide)

		s.imageService.AttachPlaceholders(slide.Content)

		// The frame must be marshaled before the asset fetch starts: the
		// fetch mutates slide.Content in place, and the streamed chunk
		// carries the placeholder content.
		slideJSON, err := json.Marshal(slide)
		if err != nil {
			assetWG.Wait()
			return send(models.SSEErrorFrame(models.NormalizeError(err)))
		}

		assetWG.Add(1)
		go func() {
			defer assetWG.Done()
			fetched := s.imageService.FetchSlideAssets(ctx, slide, presentation.ImageModel, apiKey)
			assetMu.Lock()
			assets = append(assets, fetched...)
			assetMu.Unlock()
		}()

		if err := send(models.SSEChunkFrame(string(slideJSON))); err != nil {
			assetWG.Wait()
			return err
		}
	}

	if err := send(models.SSEChunkFrame(` ] }`)); err != nil {
		assetWG.Wait()
		return err
	}

	assetWG.Wait()

	if err := s.presentationRepo.CommitGeneration(presentation, slides, assets); err != nil {
		return send(models.SSEErrorFrame(models.NormalizeError(fmt.Errorf("failed to commit generated presentation: %w", err))))
	}

	return send(models.SSECompleteFrame("presentation", &models.PresentationWithSlides{
		Presentation: *presentation,
		Slides:       slides,
	}))
}

// progress records a stage transition on the task and fans it out to SSE
// subscribers. Sync runs pass a nil task and skip the bookkeeping.
func (s *GenerationService) progress(task *models.GenerationTask, message string) {
	if task == nil {
		return
	}
	task.Status = models.TaskStatusRunning
	task.Message = message
	s.saveTask(task)
}

func (s *GenerationService) saveTask(task *models.GenerationTask) {
	if err := s.taskRepo.Update(task); err != nil {
		logrus.Errorf("Failed to save generation task %s: %v", task.ID, err)
	}
	if s.sseHub != nil {
		s.sseHub.BroadcastTaskUpdate(task)
	}
}

// notifyOutcome fans the terminal event out to webhook subscribers and, when
// a broker is connected, onto the internal event queue.
func (s *GenerationService) notifyOutcome(event string, data interface{}) {
	if s.webhookService != nil {
		s.webhookService.Notify(event, data)
	}
	if s.rabbitmqService != nil {
		if err := s.rabbitmqService.PublishEvent(event, data); err != nil {
			logrus.Warnf("Failed to publish %s event: %v", event, err)
		}
	}
}

// loadFileContext reads the request's files into one context blob. Unreadable
// files are skipped with a warning, matching the tolerance of asset fetching.
func (s *GenerationService) loadFileContext(paths []string) string {
	var parts []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logrus.Warnf("Failed to load context file %s: %v", path, err)
			continue
		}
		parts = append(parts, string(data))
	}
	return strings.Join(parts, "\n\n")
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
