package llm

import (
	"context"

	"github.com/slidecraft/slidecraft-backend/internal/models"
)

// OutlineRequest seeds outline generation for a whole presentation
type OutlineRequest struct {
	Content           string
	NSlides           int
	Language          string
	AdditionalContext string
	Tone              string
	Verbosity         string
	Instructions      string
	IncludeTitleSlide bool
	WebSearch         bool
	Model             *models.ModelSpec
	APIKey            string
}

// OutlineChunk is a tagged streaming result. Exactly one of Text or Err is
// set; an Err chunk terminates the stream. The orchestrator never has to
// type-check exceptions to tell a payload from a failure.
type OutlineChunk struct {
	Text string
	Err  *models.APIError
}

// ContentOptions carries the per-slide generation knobs
type ContentOptions struct {
	Language     string
	Tone         string
	Verbosity    string
	Instructions string
	Model        *models.ModelSpec
	APIKey       string
}

// Client is the LLM collaborator surface the orchestrator depends on.
// Implementations turn prompts into outline/structure/slide JSON; the
// orchestrator only cares about the shapes coming back.
type Client interface {
	// GenerateOutlines streams outline JSON fragments for the requested deck.
	// The concatenated Text chunks form one JSON document {"slides":[...]}.
	GenerateOutlines(ctx context.Context, req OutlineRequest) <-chan OutlineChunk

	// GenerateStructure picks a layout index for every outline entry of an
	// unordered layout group. The result may be longer than the outline.
	GenerateStructure(ctx context.Context, outlines models.SlideOutlineList, layout *models.PresentationLayout, instructions string, model *models.ModelSpec, apiKey string) (models.Structure, error)

	// GenerateSlideContent produces the structured content document for one slide
	GenerateSlideContent(ctx context.Context, layout models.SlideLayout, outline models.SlideOutline, opts ContentOptions) (models.JSON, error)
}
