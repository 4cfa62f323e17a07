package models

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromOutlinesUsesFirstLine(t *testing.T) {
	outlines := SlideOutlineList{
		{Content: "# Renewable Energy\nWhy solar and wind matter"},
		{Content: "Solar basics"},
	}
	assert.Equal(t, "Renewable Energy", TitleFromOutlines(outlines))
}

func TestTitleFromOutlinesTrimsWhitespaceAndHeadingMarkers(t *testing.T) {
	outlines := SlideOutlineList{{Content: "  ## The Grid  \nmore"}}
	assert.Equal(t, "The Grid", TitleFromOutlines(outlines))
}

func TestTitleFromOutlinesCapsLength(t *testing.T) {
	outlines := SlideOutlineList{{Content: strings.Repeat("a", 150)}}
	assert.Len(t, TitleFromOutlines(outlines), 100)
}

func TestTitleFromOutlinesCapsLengthOnRuneBoundary(t *testing.T) {
	outlines := SlideOutlineList{{Content: strings.Repeat("é", 150)}}
	title := TitleFromOutlines(outlines)
	assert.True(t, utf8.ValidString(title))
	assert.Equal(t, strings.Repeat("é", 100), title)
}

func TestTitleFromOutlinesEmptyList(t *testing.T) {
	assert.Empty(t, TitleFromOutlines(nil))
}
