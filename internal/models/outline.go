package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// SlideOutline is the per-slide text brief used as generation input
type SlideOutline struct {
	Content string `json:"content" example:"Introduction to renewable energy"`
}

// SlideOutlineList is the ordered outline of a presentation, stored as a JSON column
type SlideOutlineList []SlideOutline

func (l SlideOutlineList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *SlideOutlineList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for SlideOutlineList column: %T", value)
	}
}

// TitleFromOutlines derives a presentation title from the first outline entry.
// The first line of the first outline is the generated title slide heading.
func TitleFromOutlines(outlines SlideOutlineList) string {
	if len(outlines) == 0 {
		return ""
	}
	first := strings.TrimSpace(outlines[0].Content)
	if idx := strings.IndexByte(first, '\n'); idx >= 0 {
		first = first[:idx]
	}
	first = strings.TrimLeft(first, "# ")
	if runes := []rune(first); len(runes) > 100 {
		first = string(runes[:100])
	}
	return strings.TrimSpace(first)
}
