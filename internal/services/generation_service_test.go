package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/slidecraft/slidecraft-backend/internal/database"
	"github.com/slidecraft/slidecraft-backend/internal/database/repository"
	"github.com/slidecraft/slidecraft-backend/internal/models"
)

type pipelineFixture struct {
	db                *gorm.DB
	llmClient         *fakeLLMClient
	presentationRepo  *repository.PresentationRepository
	slideRepo         *repository.SlideRepository
	taskRepo          *repository.GenerationTaskRepository
	webhookRepo       *repository.WebhookSubscriptionRepository
	generationService *GenerationService
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	t.Setenv("EXPORT_DIR", t.TempDir())
	t.Setenv("IMAGE_SERVICE_URL", "")
	t.Setenv("RENDERER_URL", "")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	presentationRepo := repository.NewPresentationRepository(db)
	slideRepo := repository.NewSlideRepository(db)
	taskRepo := repository.NewGenerationTaskRepository(db)
	webhookRepo := repository.NewWebhookSubscriptionRepository(db)
	templateRepo := repository.NewTemplateRepository(db)

	llmClient := newFakeLLMClient()
	layoutService := NewLayoutService(templateRepo)
	structureService := NewStructureService(llmClient)
	generationService := NewGenerationService(
		presentationRepo, slideRepo, taskRepo,
		layoutService, structureService, llmClient,
		NewImageService(), NewExportService(), NewWebhookService(webhookRepo),
		nil, NewSSEHub(),
	)

	return &pipelineFixture{
		db:                db,
		llmClient:         llmClient,
		presentationRepo:  presentationRepo,
		slideRepo:         slideRepo,
		taskRepo:          taskRepo,
		webhookRepo:       webhookRepo,
		generationService: generationService,
	}
}

func TestValidateRequestRejectsEmptyInput(t *testing.T) {
	f := newPipelineFixture(t)

	err := f.generationService.ValidateRequest(&models.GeneratePresentationRequest{
		NSlides:  5,
		Template: "general",
	})
	require.Error(t, err)
	assert.Equal(t, 400, models.NormalizeError(err).StatusCode)
}

func TestValidateRequestRejectsTableOfContentsUnderThreeSlides(t *testing.T) {
	f := newPipelineFixture(t)

	err := f.generationService.ValidateRequest(&models.GeneratePresentationRequest{
		Content:                "Renewable energy",
		NSlides:                2,
		Template:               "general",
		IncludeTableOfContents: true,
	})
	require.Error(t, err)
	assert.Equal(t, 400, models.NormalizeError(err).StatusCode)
}

func TestValidateRequestRejectsUnknownTemplate(t *testing.T) {
	f := newPipelineFixture(t)

	err := f.generationService.ValidateRequest(&models.GeneratePresentationRequest{
		Content:  "Renewable energy",
		NSlides:  5,
		Template: "does-not-exist",
	})
	require.Error(t, err)
	assert.Equal(t, 400, models.NormalizeError(err).StatusCode)
}

func TestGenerateProducesOrderedDeck(t *testing.T) {
	f := newPipelineFixture(t)

	response, err := f.generationService.Generate(context.Background(), nil, "", &models.GeneratePresentationRequest{
		Content:  "Renewable energy",
		NSlides:  5,
		Language: "en",
		Template: "general",
	})
	require.NoError(t, err)
	require.NotNil(t, response)
	assert.NotEmpty(t, response.Path)
	assert.Contains(t, response.EditPath, "/presentation?id=")

	presentations, err := allPresentations(f.db)
	require.NoError(t, err)
	require.Len(t, presentations, 1)
	presentation := presentations[0]
	assert.Equal(t, 5, presentation.NSlides)
	assert.Len(t, presentation.Outlines, 5)
	assert.Len(t, presentation.Structure, 5)
	require.NotNil(t, presentation.Title)
	assert.Equal(t, "outline-0", *presentation.Title)

	slides, err := f.slideRepo.GetByPresentationID(presentation.ID)
	require.NoError(t, err)
	require.Len(t, slides, 5)
	for i, slide := range slides {
		assert.Equal(t, i, slide.Index)
		assert.Equal(t, "general", slide.LayoutGroup)
		assert.NotEmpty(t, slide.Layout)
		assert.Equal(t, fmt.Sprintf("outline-%d", i), slide.Content["title"])
		assert.NotEmpty(t, slide.SpeakerNote)
	}
}

func TestGenerateKeepsSlideOrderWhenResponsesFinishOutOfOrder(t *testing.T) {
	f := newPipelineFixture(t)

	// Later outlines answer first within each batch, and the second batch
	// outruns stragglers of the first.
	f.llmClient.contentDelay = func(idx int) time.Duration {
		if idx < 0 {
			return 0
		}
		return time.Duration(12-idx) * 5 * time.Millisecond
	}

	_, err := f.generationService.Generate(context.Background(), nil, "", &models.GeneratePresentationRequest{
		Content:  "Renewable energy",
		NSlides:  12,
		Language: "en",
		Template: "general",
	})
	require.NoError(t, err)

	presentations, err := allPresentations(f.db)
	require.NoError(t, err)
	require.Len(t, presentations, 1)

	slides, err := f.slideRepo.GetByPresentationID(presentations[0].ID)
	require.NoError(t, err)
	require.Len(t, slides, 12)
	for i, slide := range slides {
		assert.Equal(t, i, slide.Index)
		assert.Equal(t, fmt.Sprintf("outline-%d", i), slide.Content["title"])
	}
}

func TestGenerateWithTableOfContentsReachesRequestedTotal(t *testing.T) {
	f := newPipelineFixture(t)

	// 25 requested with title slide: 3 ToC slides, 22 generated outlines
	_, err := f.generationService.Generate(context.Background(), nil, "", &models.GeneratePresentationRequest{
		Content:                "Renewable energy",
		NSlides:                25,
		Language:               "en",
		Template:               "general",
		IncludeTableOfContents: true,
	})
	require.NoError(t, err)

	presentations, err := allPresentations(f.db)
	require.NoError(t, err)
	require.Len(t, presentations, 1)
	presentation := presentations[0]

	assert.Len(t, presentation.Outlines, 25)
	assert.Len(t, presentation.Structure, 25)

	slides, err := f.slideRepo.GetByPresentationID(presentation.ID)
	require.NoError(t, err)
	assert.Len(t, slides, 25)

	tocSlides := 0
	for _, outline := range presentation.Outlines {
		if strings.HasPrefix(outline.Content, "Table of Contents") {
			tocSlides++
		}
	}
	assert.Equal(t, 3, tocSlides)
}

func TestGenerateFailureLeavesNoPartialState(t *testing.T) {
	f := newPipelineFixture(t)
	f.llmClient.contentErrAt = 2

	var received []models.WebhookPayload
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload models.WebhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		mu.Lock()
		received = append(received, payload)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, f.webhookRepo.Create(&models.WebhookSubscription{
		ID:    models.NewWebhookSubscriptionID(),
		URL:   server.URL,
		Event: models.WebhookEventGenerationFailed,
	}))

	_, err := f.generationService.Generate(context.Background(), nil, "", &models.GeneratePresentationRequest{
		Content:  "Renewable energy",
		NSlides:  5,
		Language: "en",
		Template: "general",
	})
	require.Error(t, err)
	assert.Equal(t, 500, models.NormalizeError(err).StatusCode)

	// Nothing was persisted
	presentations, err := allPresentations(f.db)
	require.NoError(t, err)
	assert.Empty(t, presentations)
	var slideCount int64
	require.NoError(t, f.db.Model(&models.Slide{}).Count(&slideCount).Error)
	assert.Zero(t, slideCount)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, models.WebhookEventGenerationFailed, received[0].Event)
}

func TestSubmitAsyncReachesCompletedState(t *testing.T) {
	f := newPipelineFixture(t)

	task, err := f.generationService.SubmitAsync(nil, "", &models.GeneratePresentationRequest{
		Content:  "Renewable energy",
		NSlides:  5,
		Language: "en",
		Template: "general",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, "Queued for generation", task.Message)

	final := awaitTerminal(t, f, task.ID)
	assert.Equal(t, models.TaskStatusCompleted, final.Status)
	assert.Equal(t, "Presentation generation completed", final.Message)
	assert.NotEmpty(t, final.Result["path"])
	assert.NotEmpty(t, final.Result["edit_path"])
	assert.Nil(t, final.Error)
}

func TestSubmitAsyncFailureRecordsErrorPayload(t *testing.T) {
	f := newPipelineFixture(t)
	f.llmClient.outlineErr = models.NewUpstreamError("outline backend unavailable")

	task, err := f.generationService.SubmitAsync(nil, "", &models.GeneratePresentationRequest{
		Content:  "Renewable energy",
		NSlides:  5,
		Language: "en",
		Template: "general",
	})
	require.NoError(t, err)

	final := awaitTerminal(t, f, task.ID)
	assert.Equal(t, models.TaskStatusError, final.Status)
	assert.Equal(t, "Presentation generation failed", final.Message)
	require.NotNil(t, final.Error)
	assert.Equal(t, "outline backend unavailable", final.Error["message"])
}

func TestStreamEmitsSkeletonSlidesAndComplete(t *testing.T) {
	f := newPipelineFixture(t)
	presentation := f.preparedPresentation(t, 3)

	var frames []string
	send := func(frame []byte) error {
		frames = append(frames, string(frame))
		return nil
	}

	err := f.generationService.Stream(context.Background(), nil, "", presentation.ID, send)
	require.NoError(t, err)

	joined := strings.Join(frames, "")
	assert.Contains(t, joined, `{ \"slides\": [ `)
	assert.Contains(t, joined, ` ] }`)
	assert.Contains(t, joined, "event: complete")
	assert.NotContains(t, joined, "event: error")

	// The deck was committed
	slides, err := f.slideRepo.GetByPresentationID(presentation.ID)
	require.NoError(t, err)
	assert.Len(t, slides, 3)
}

func TestStreamFramesCarryPlaceholderAssetsOnly(t *testing.T) {
	f := newPipelineFixture(t)
	f.llmClient.withImagePrompts = true

	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"path": "/generated/pic.jpg"}`)
	}))
	defer imageServer.Close()
	t.Setenv("IMAGE_SERVICE_URL", imageServer.URL)
	f.generationService.imageService = NewImageService()

	presentation := f.preparedPresentation(t, 3)

	var frames []string
	send := func(frame []byte) error {
		frames = append(frames, string(frame))
		return nil
	}

	err := f.generationService.Stream(context.Background(), nil, "", presentation.ID, send)
	require.NoError(t, err)

	// Slide chunks are captured before asset fetches touch the content, so
	// only the placeholder url ever reaches the wire.
	var slideChunks string
	for _, frame := range frames {
		if strings.HasPrefix(frame, "event: response") {
			slideChunks += frame
		}
	}
	assert.Contains(t, slideChunks, "/static/images/placeholder.jpg")
	assert.NotContains(t, slideChunks, "/generated/pic.jpg")

	// The committed deck carries the resolved urls
	slides, err := f.slideRepo.GetByPresentationID(presentation.ID)
	require.NoError(t, err)
	require.Len(t, slides, 3)
	for _, slide := range slides {
		image, ok := slide.Content["image"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "/generated/pic.jpg", image["__image_url__"])
	}
}

func TestStreamFailureWithholdsClosingTokens(t *testing.T) {
	f := newPipelineFixture(t)
	f.llmClient.contentErrAt = 1
	presentation := f.preparedPresentation(t, 3)

	var frames []string
	send := func(frame []byte) error {
		frames = append(frames, string(frame))
		return nil
	}

	err := f.generationService.Stream(context.Background(), nil, "", presentation.ID, send)
	require.NoError(t, err)

	joined := strings.Join(frames, "")
	assert.Contains(t, joined, "event: error")
	assert.NotContains(t, joined, ` ] }`)
	assert.NotContains(t, joined, "event: complete")

	// Nothing was committed
	slides, err := f.slideRepo.GetByPresentationID(presentation.ID)
	require.NoError(t, err)
	assert.Empty(t, slides)
}

func TestStreamRejectsUnpreparedPresentation(t *testing.T) {
	f := newPipelineFixture(t)

	presentation := &models.Presentation{
		ID:       "11111111-1111-1111-1111-111111111111",
		Content:  "Renewable energy",
		NSlides:  3,
		Language: "en",
	}
	require.NoError(t, f.presentationRepo.Create(presentation))

	err := f.generationService.Stream(context.Background(), nil, "", presentation.ID, func([]byte) error {
		t.Fatal("no frame should be sent for an unprepared presentation")
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 400, models.NormalizeError(err).StatusCode)
}

// preparedPresentation stores a presentation with outlines, layout and
// structure already attached, ready for streaming.
func (f *pipelineFixture) preparedPresentation(t *testing.T, n int) *models.Presentation {
	t.Helper()
	layout := testLayout(false)
	presentation := &models.Presentation{
		ID:       "22222222-2222-2222-2222-222222222222",
		Content:  "Renewable energy",
		NSlides:  n,
		Language: "en",
		Outlines: makeOutlines(n),
		Layout:   layout,
	}
	structure := make(models.Structure, n)
	for i := range structure {
		structure[i] = i % len(layout.Slides)
	}
	presentation.Structure = structure
	require.NoError(t, f.presentationRepo.Create(presentation))
	return presentation
}

func awaitTerminal(t *testing.T, f *pipelineFixture, taskID string) *models.GenerationTask {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		task, err := f.taskRepo.GetByID(taskID)
		require.NoError(t, err)
		if task.Terminal() {
			return task
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("generation task never reached a terminal state")
	return nil
}

func allPresentations(db *gorm.DB) ([]*models.Presentation, error) {
	var presentations []*models.Presentation
	err := db.Find(&presentations).Error
	return presentations, err
}
