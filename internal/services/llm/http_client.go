package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slidecraft/slidecraft-backend/internal/models"
)

// HTTPClient talks to the generation backend over HTTP. The backend owns the
// prompts and the actual model calls; this client only moves JSON around.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the generation backend at baseURL
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// GenerateOutlines streams the outline document line by line from the backend
func (c *HTTPClient) GenerateOutlines(ctx context.Context, req OutlineRequest) <-chan OutlineChunk {
	out := make(chan OutlineChunk, 8)

	go func() {
		defer close(out)

		body := map[string]interface{}{
			"content":             req.Content,
			"n_slides":            req.NSlides,
			"language":            req.Language,
			"additional_context":  req.AdditionalContext,
			"tone":                req.Tone,
			"verbosity":           req.Verbosity,
			"instructions":        req.Instructions,
			"include_title_slide": req.IncludeTitleSlide,
			"web_search":          req.WebSearch,
		}
		if req.Model != nil {
			body["model"] = req.Model
		}

		resp, err := c.post(ctx, "/v1/ppt/outlines/stream", body, req.APIKey)
		if err != nil {
			logrus.Errorf("Outline generation request failed: %v", err)
			out <- OutlineChunk{Err: models.NewUpstreamError("Failed to generate presentation outlines. Please try again.")}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			out <- OutlineChunk{Err: c.errorFromResponse(resp, "outline generation")}
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			out <- OutlineChunk{Text: scanner.Text()}
		}
		if err := scanner.Err(); err != nil {
			logrus.Errorf("Outline stream read failed: %v", err)
			out <- OutlineChunk{Err: models.NewUpstreamError("Outline stream interrupted")}
		}
	}()

	return out
}

// GenerateStructure asks the backend for a layout index per outline entry
func (c *HTTPClient) GenerateStructure(ctx context.Context, outlines models.SlideOutlineList, layout *models.PresentationLayout, instructions string, model *models.ModelSpec, apiKey string) (models.Structure, error) {
	body := map[string]interface{}{
		"outlines":     outlines,
		"layout":       layout,
		"instructions": instructions,
	}
	if model != nil {
		body["model"] = model
	}

	resp, err := c.post(ctx, "/v1/ppt/structure", body, apiKey)
	if err != nil {
		return nil, fmt.Errorf("structure generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.errorFromResponse(resp, "structure generation")
	}

	var payload struct {
		Slides models.Structure `json:"slides"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode structure response: %w", err)
	}
	return payload.Slides, nil
}

// GenerateSlideContent produces one slide's content document
func (c *HTTPClient) GenerateSlideContent(ctx context.Context, layout models.SlideLayout, outline models.SlideOutline, opts ContentOptions) (models.JSON, error) {
	body := map[string]interface{}{
		"layout":       layout,
		"outline":      outline,
		"language":     opts.Language,
		"tone":         opts.Tone,
		"verbosity":    opts.Verbosity,
		"instructions": opts.Instructions,
	}
	if opts.Model != nil {
		body["model"] = opts.Model
	}

	resp, err := c.post(ctx, "/v1/ppt/slide-content", body, opts.APIKey)
	if err != nil {
		return nil, fmt.Errorf("slide content request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.errorFromResponse(resp, "slide content generation")
	}

	var content models.JSON
	if err := json.NewDecoder(resp.Body).Decode(&content); err != nil {
		return nil, fmt.Errorf("failed to decode slide content: %w", err)
	}
	return content, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body interface{}, apiKey string) (*http.Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "SlideCraft-Backend/1.0")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	return c.httpClient.Do(req)
}

func (c *HTTPClient) errorFromResponse(resp *http.Response, stage string) *models.APIError {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.NewUpstreamError(fmt.Sprintf("%s returned status %d", stage, resp.StatusCode))
	}

	var errorResp map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &errorResp); err == nil {
		if msg, ok := errorResp["error"].(string); ok {
			return models.NewUpstreamError(fmt.Sprintf("%s failed: %s", stage, msg))
		}
		if msg, ok := errorResp["message"].(string); ok {
			return models.NewUpstreamError(fmt.Sprintf("%s failed: %s", stage, msg))
		}
	}

	logrus.Errorf("Generation backend returned status %d for %s: %s", resp.StatusCode, stage, string(bodyBytes))
	return models.NewUpstreamError(fmt.Sprintf("%s returned status %d", stage, resp.StatusCode))
}
