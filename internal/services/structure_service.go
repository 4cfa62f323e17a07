package services

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/slidecraft/slidecraft-backend/internal/models"
	"github.com/slidecraft/slidecraft-backend/internal/services/llm"
)

// tocSummarySpan caps how many upcoming outline entries one ToC slide summarizes
const tocSummarySpan = 10

// StructureService assigns a layout index to every outline entry and injects
// computed table-of-contents slides.
type StructureService struct {
	llmClient llm.Client
}

func NewStructureService(llmClient llm.Client) *StructureService {
	return &StructureService{llmClient: llmClient}
}

// Assign maps each outline entry to a layout index. Ordered layout groups map
// deterministically; unordered groups delegate to the structure collaborator.
// The result is always exactly len(outlines) long and every value lies in
// [0, len(layout.Slides)): out-of-range indices from the collaborator are
// replaced with a random valid index rather than failing the run, since the
// layout choice is cosmetic.
func (s *StructureService) Assign(ctx context.Context, outlines models.SlideOutlineList, layout *models.PresentationLayout, instructions string, model *models.ModelSpec, apiKey string) (models.Structure, error) {
	totalLayouts := len(layout.Slides)
	if totalLayouts == 0 {
		return nil, models.NewValidationError("Layout has no slide layouts")
	}

	var structure models.Structure
	if layout.Ordered {
		structure = layout.ToStructure(len(outlines))
	} else {
		generated, err := s.llmClient.GenerateStructure(ctx, outlines, layout, instructions, model, apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to generate presentation structure: %w", err)
		}
		structure = generated
	}

	// The collaborator may return more or fewer entries than outlines
	if len(structure) > len(outlines) {
		structure = structure[:len(outlines)]
	}
	for len(structure) < len(outlines) {
		structure = append(structure, rand.Intn(totalLayouts))
	}

	for i := range structure {
		if structure[i] < 0 || structure[i] >= totalLayouts {
			logrus.Warnf("Layout index %d out of range for outline %d, repairing", structure[i], i)
			structure[i] = rand.Intn(totalLayouts)
		}
	}

	return structure, nil
}

// InjectTableOfContents inserts the reserved ToC slides after the title slide
// (or at the front when there is none). Structure and outline are mutated in
// lockstep so their lengths stay equal; each ToC outline summarizes up to the
// next ten content entries together with their eventual page numbers.
//
// totalRequested is the full slide count the caller asked for; totalOutlines
// is how many content outlines were actually generated, so the difference is
// the number of ToC slides to synthesize.
func (s *StructureService) InjectTableOfContents(structure models.Structure, outlines models.SlideOutlineList, layout *models.PresentationLayout, totalRequested int, includeTitleSlide bool) (models.Structure, models.SlideOutlineList) {
	totalOutlines := len(outlines)
	nTocSlides := totalRequested - totalOutlines
	if nTocSlides <= 0 {
		return structure, outlines
	}

	tocLayoutIndex := layout.TocLayoutIndex()
	if tocLayoutIndex == -1 {
		return structure, outlines
	}

	outlineIndex := 0
	if includeTitleSlide {
		outlineIndex = 1
	}

	for i := 0; i < nTocSlides; i++ {
		outlinesTo := outlineIndex + tocSummarySpan
		// When the span boundary lands exactly on the outline length, pull it
		// back by one so the next ToC page is never empty.
		if totalOutlines == outlinesTo {
			outlinesTo--
		}

		insertAt := i
		if includeTitleSlide {
			insertAt = i + 1
		}
		structure = insertInt(structure, insertAt, tocLayoutIndex)

		tocContent := "Table of Contents\n\n"
		for _, outline := range sliceOutlines(outlines, outlineIndex, outlinesTo) {
			pageNumber := outlineIndex - i + nTocSlides
			if includeTitleSlide {
				pageNumber++
			}
			tocContent += fmt.Sprintf("Slide page number: %d\n Slide Content: %s\n\n", pageNumber, truncate(outline.Content, 100))
			outlineIndex++
		}
		// Skip over the ToC entry we are about to insert
		outlineIndex++

		outlines = insertOutline(outlines, insertAt, models.SlideOutline{Content: tocContent})
	}

	return structure, outlines
}

func insertInt(s models.Structure, at, value int) models.Structure {
	if at > len(s) {
		at = len(s)
	}
	s = append(s, 0)
	copy(s[at+1:], s[at:])
	s[at] = value
	return s
}

func insertOutline(s models.SlideOutlineList, at int, value models.SlideOutline) models.SlideOutlineList {
	if at > len(s) {
		at = len(s)
	}
	s = append(s, models.SlideOutline{})
	copy(s[at+1:], s[at:])
	s[at] = value
	return s
}

func sliceOutlines(s models.SlideOutlineList, from, to int) models.SlideOutlineList {
	if from < 0 {
		from = 0
	}
	if to > len(s) {
		to = len(s)
	}
	if from >= to {
		return nil
	}
	return s[from:to]
}

// truncate caps a string at max characters without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
