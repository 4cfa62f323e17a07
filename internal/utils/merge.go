package utils

import (
	"github.com/slidecraft/slidecraft-backend/internal/models"
)

// DeepMerge merges partial into existing without mutating either input.
// Nested objects merge path-by-path; scalars, slices and any non-object leaf
// in partial overwrite the corresponding path. Keys absent from partial are
// left untouched, so a partial edit is never a full replace.
func DeepMerge(existing, partial models.JSON) models.JSON {
	merged := make(models.JSON, len(existing))
	for key, value := range existing {
		merged[key] = value
	}
	for key, newValue := range partial {
		existingMap, existingIsMap := toObject(merged[key])
		newMap, newIsMap := toObject(newValue)
		if existingIsMap && newIsMap {
			merged[key] = map[string]interface{}(DeepMerge(existingMap, newMap))
			continue
		}
		merged[key] = newValue
	}
	return merged
}

func toObject(value interface{}) (models.JSON, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return models.JSON(v), true
	case models.JSON:
		return v, true
	default:
		return nil, false
	}
}
