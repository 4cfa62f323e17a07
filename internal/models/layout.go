package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// SlideLayout is a single visual template inside a layout group
type SlideLayout struct {
	ID          string `json:"id" example:"general-bullet-points"`
	Name        string `json:"name" example:"Bullet Points"`
	Description string `json:"description,omitempty"`
}

// PresentationLayout is a named, orderable set of slide layouts.
// Ordered layouts map outline position -> layout position deterministically;
// unordered layouts need structure generation.
type PresentationLayout struct {
	Name    string        `json:"name" example:"general"`
	Ordered bool          `json:"ordered"`
	Slides  []SlideLayout `json:"slides"`
}

func (l PresentationLayout) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *PresentationLayout) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for PresentationLayout column: %T", value)
	}
}

// ToStructure maps outline positions onto layout positions in order,
// wrapping around when the outline is longer than the layout.
func (l *PresentationLayout) ToStructure(n int) Structure {
	structure := make(Structure, 0, n)
	for i := 0; i < n; i++ {
		structure = append(structure, i%len(l.Slides))
	}
	return structure
}

// TocLayoutIndex returns the index of a layout usable for a table of contents
// slide, preferring an explicit ToC layout over a generic list layout.
// Returns -1 when the layout group has neither.
func (l *PresentationLayout) TocLayoutIndex() int {
	listIndex := -1
	for i, slide := range l.Slides {
		id := strings.ToLower(slide.ID + " " + slide.Name)
		if strings.Contains(id, "table_of_contents") || strings.Contains(id, "table-of-contents") || strings.Contains(id, "toc") {
			return i
		}
		if listIndex == -1 && strings.Contains(id, "list") {
			listIndex = i
		}
	}
	return listIndex
}

// Structure maps each outline position to a layout index, stored as a JSON column
type Structure []int

func (s Structure) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *Structure) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type for Structure column: %T", value)
	}
}
