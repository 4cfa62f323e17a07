package models

import (
	"encoding/json"
	"fmt"
)

// SSE frame builders for the generation stream. Each frame is a single-line
// JSON payload in standard "event: X\ndata: Y\n\n" framing.

// SSEStatusFrame reports a stage transition to the stream consumer
func SSEStatusFrame(message string) []byte {
	data, _ := json.Marshal(map[string]interface{}{"status": message})
	return []byte(fmt.Sprintf("event: status\ndata: %s\n\n", data))
}

// SSEChunkFrame carries an incremental piece of the growing slides document
func SSEChunkFrame(chunk string) []byte {
	data, _ := json.Marshal(map[string]interface{}{"type": "chunk", "chunk": chunk})
	return []byte(fmt.Sprintf("event: response\ndata: %s\n\n", data))
}

// SSECompleteFrame carries the terminal presentation-with-slides payload
func SSECompleteFrame(key string, value interface{}) []byte {
	data, _ := json.Marshal(map[string]interface{}{"type": "complete", key: value})
	return []byte(fmt.Sprintf("event: complete\ndata: %s\n\n", data))
}

// SSEErrorFrame terminates the stream early with a normalized error
func SSEErrorFrame(apiErr *APIError) []byte {
	data, _ := json.Marshal(apiErr)
	return []byte(fmt.Sprintf("event: error\ndata: %s\n\n", data))
}
