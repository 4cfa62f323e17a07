package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidecraft/slidecraft-backend/internal/models"
	"github.com/slidecraft/slidecraft-backend/internal/services/llm"
)

// fakeLLMClient scripts the collaborator responses for pipeline tests
type fakeLLMClient struct {
	outlineText      string
	outlineErr       *models.APIError
	structure        models.Structure
	structureErr     error
	contentErrAt     int // outline index that fails content generation, -1 for none
	contentDelay     func(idx int) time.Duration
	withImagePrompts bool

	mu           sync.Mutex
	contentCalls int
}

func newFakeLLMClient() *fakeLLMClient {
	return &fakeLLMClient{contentErrAt: -1}
}

func (f *fakeLLMClient) GenerateOutlines(ctx context.Context, req llm.OutlineRequest) <-chan llm.OutlineChunk {
	out := make(chan llm.OutlineChunk, 4)
	go func() {
		defer close(out)
		if f.outlineErr != nil {
			out <- llm.OutlineChunk{Err: f.outlineErr}
			return
		}
		text := f.outlineText
		if text == "" {
			text = defaultOutlineDocument(req.NSlides)
		}
		// Deliver in two fragments so accumulation is exercised
		half := len(text) / 2
		out <- llm.OutlineChunk{Text: text[:half]}
		out <- llm.OutlineChunk{Text: text[half:]}
	}()
	return out
}

func (f *fakeLLMClient) GenerateStructure(ctx context.Context, outlines models.SlideOutlineList, layout *models.PresentationLayout, instructions string, model *models.ModelSpec, apiKey string) (models.Structure, error) {
	if f.structureErr != nil {
		return nil, f.structureErr
	}
	if f.structure != nil {
		return f.structure, nil
	}
	structure := make(models.Structure, len(outlines))
	for i := range structure {
		structure[i] = i % len(layout.Slides)
	}
	return structure, nil
}

func (f *fakeLLMClient) GenerateSlideContent(ctx context.Context, layout models.SlideLayout, outline models.SlideOutline, opts llm.ContentOptions) (models.JSON, error) {
	f.mu.Lock()
	f.contentCalls++
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := outlineIndexFromContent(outline.Content)
	if f.contentDelay != nil {
		time.Sleep(f.contentDelay(idx))
	}
	if f.contentErrAt >= 0 && idx == f.contentErrAt {
		return nil, models.NewUpstreamError("slide content generation failed")
	}
	content := models.JSON{
		"title":            outline.Content,
		"__speaker_note__": fmt.Sprintf("note for %s", outline.Content),
	}
	if f.withImagePrompts {
		content["image"] = map[string]interface{}{
			"__image_prompt__": fmt.Sprintf("photo for %s", outline.Content),
		}
	}
	return content, nil
}

func defaultOutlineDocument(n int) string {
	var entries []string
	for i := 0; i < n; i++ {
		entries = append(entries, fmt.Sprintf(`{"content": "outline-%d"}`, i))
	}
	return fmt.Sprintf(`{"slides": [%s]}`, strings.Join(entries, ", "))
}

// outlineIndexFromContent recovers the numeric suffix of "outline-N"
func outlineIndexFromContent(content string) int {
	var idx int
	if _, err := fmt.Sscanf(content, "outline-%d", &idx); err != nil {
		return -1
	}
	return idx
}

func makeOutlines(n int) models.SlideOutlineList {
	outlines := make(models.SlideOutlineList, 0, n)
	for i := 0; i < n; i++ {
		outlines = append(outlines, models.SlideOutline{Content: fmt.Sprintf("outline-%d", i)})
	}
	return outlines
}

func testLayout(ordered bool) *models.PresentationLayout {
	return &models.PresentationLayout{
		Name:    "general",
		Ordered: ordered,
		Slides: []models.SlideLayout{
			{ID: "general-intro", Name: "Intro"},
			{ID: "general-bullet-points", Name: "Bullet Points"},
			{ID: "general-table-of-contents-list", Name: "Table of Contents"},
			{ID: "general-quote", Name: "Quote"},
		},
	}
}

func TestAssignOrderedLayoutMapsPositionally(t *testing.T) {
	s := NewStructureService(newFakeLLMClient())
	outlines := makeOutlines(6)

	structure, err := s.Assign(context.Background(), outlines, testLayout(true), "", nil, "")
	require.NoError(t, err)

	assert.Equal(t, models.Structure{0, 1, 2, 3, 0, 1}, structure)
}

func TestAssignTruncatesAndPadsToOutlineLength(t *testing.T) {
	client := newFakeLLMClient()
	client.structure = models.Structure{0, 1, 2, 3, 0, 1, 2}
	s := NewStructureService(client)

	structure, err := s.Assign(context.Background(), makeOutlines(4), testLayout(false), "", nil, "")
	require.NoError(t, err)
	assert.Len(t, structure, 4)

	client.structure = models.Structure{0, 1}
	structure, err = s.Assign(context.Background(), makeOutlines(5), testLayout(false), "", nil, "")
	require.NoError(t, err)
	assert.Len(t, structure, 5)
	for _, idx := range structure {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 4)
	}
}

func TestAssignRepairsOutOfRangeIndices(t *testing.T) {
	client := newFakeLLMClient()
	client.structure = models.Structure{0, 99, -3, 2}
	s := NewStructureService(client)

	structure, err := s.Assign(context.Background(), makeOutlines(4), testLayout(false), "", nil, "")
	require.NoError(t, err)

	assert.Equal(t, 0, structure[0])
	assert.Equal(t, 2, structure[3])
	for _, idx := range structure {
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 4)
	}
}

func TestInjectTableOfContentsKeepsStructureAndOutlinesInLockstep(t *testing.T) {
	s := NewStructureService(newFakeLLMClient())
	layout := testLayout(false)

	// 25 requested with a title slide: 3 ToC slides, 22 content outlines
	outlines := makeOutlines(22)
	structure := make(models.Structure, 22)

	gotStructure, gotOutlines := s.InjectTableOfContents(structure, outlines, layout, 25, true)

	assert.Len(t, gotStructure, 25)
	assert.Len(t, gotOutlines, 25)

	tocIndex := layout.TocLayoutIndex()
	// ToC slides sit right after the title slide
	assert.Equal(t, tocIndex, gotStructure[1])
	assert.Equal(t, tocIndex, gotStructure[2])
	assert.Equal(t, tocIndex, gotStructure[3])
	assert.True(t, strings.HasPrefix(gotOutlines[1].Content, "Table of Contents"))
	assert.True(t, strings.HasPrefix(gotOutlines[2].Content, "Table of Contents"))
	assert.True(t, strings.HasPrefix(gotOutlines[3].Content, "Table of Contents"))

	// The title outline stays first and content outlines follow the ToC block
	assert.Equal(t, "outline-0", gotOutlines[0].Content)
	assert.Equal(t, "outline-1", gotOutlines[4].Content)
}

func TestInjectTableOfContentsWithoutTitleSlide(t *testing.T) {
	s := NewStructureService(newFakeLLMClient())
	layout := testLayout(false)

	outlines := makeOutlines(8)
	structure := make(models.Structure, 8)

	gotStructure, gotOutlines := s.InjectTableOfContents(structure, outlines, layout, 9, false)

	assert.Len(t, gotStructure, 9)
	assert.Len(t, gotOutlines, 9)
	assert.Equal(t, layout.TocLayoutIndex(), gotStructure[0])
	assert.True(t, strings.HasPrefix(gotOutlines[0].Content, "Table of Contents"))
	assert.Equal(t, "outline-0", gotOutlines[1].Content)
}

func TestInjectTableOfContentsNoTocLayoutLeavesInputsAlone(t *testing.T) {
	s := NewStructureService(newFakeLLMClient())
	layout := &models.PresentationLayout{
		Name: "plain",
		Slides: []models.SlideLayout{
			{ID: "plain-intro", Name: "Intro"},
			{ID: "plain-quote", Name: "Quote"},
		},
	}

	outlines := makeOutlines(4)
	structure := models.Structure{0, 1, 0, 1}

	gotStructure, gotOutlines := s.InjectTableOfContents(structure, outlines, layout, 5, true)

	assert.Equal(t, structure, gotStructure)
	assert.Equal(t, outlines, gotOutlines)
}

func TestInjectTableOfContentsNothingToInject(t *testing.T) {
	s := NewStructureService(newFakeLLMClient())
	layout := testLayout(false)

	outlines := makeOutlines(5)
	structure := models.Structure{0, 1, 2, 3, 0}

	gotStructure, gotOutlines := s.InjectTableOfContents(structure, outlines, layout, 5, true)

	assert.Equal(t, structure, gotStructure)
	assert.Equal(t, outlines, gotOutlines)
}

func TestInjectTableOfContentsSummariesCarryPageNumbers(t *testing.T) {
	s := NewStructureService(newFakeLLMClient())
	layout := testLayout(false)

	// 10 requested with a title slide: 1 ToC slide, 9 content outlines
	outlines := makeOutlines(9)
	structure := make(models.Structure, 9)

	_, gotOutlines := s.InjectTableOfContents(structure, outlines, layout, 10, true)

	require.Len(t, gotOutlines, 10)
	toc := gotOutlines[1].Content
	assert.Contains(t, toc, "Slide page number: 3")
	assert.Contains(t, toc, "outline-1")
	assert.NotContains(t, toc, "outline-0")
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	long := strings.Repeat("ž", 150)
	got := truncate(long, 100)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("ž", 100), got)

	assert.Equal(t, "short", truncate("short", 100))
}
