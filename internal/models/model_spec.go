package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ModelSpec identifies the LLM or image model used for a generation stage.
// It is validated at the API boundary instead of threading untyped dicts around.
type ModelSpec struct {
	Provider string `json:"provider,omitempty" example:"openai"`
	Name     string `json:"name" example:"gpt-4.1"`
}

// DefaultContentModel is used when the request does not pick a model
func DefaultContentModel() *ModelSpec {
	return &ModelSpec{Name: "gpt-4.1"}
}

// DefaultImageModel is used for asset generation when the request does not pick one
func DefaultImageModel() *ModelSpec {
	return &ModelSpec{Name: "gemini-2.5-flash-image-preview"}
}

// Validate checks the spec can be handed to a collaborator
func (m *ModelSpec) Validate() error {
	if m == nil {
		return nil
	}
	if m.Name == "" {
		return fmt.Errorf("model name is required")
	}
	return nil
}

func (m ModelSpec) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *ModelSpec) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type for ModelSpec column: %T", value)
	}
}
