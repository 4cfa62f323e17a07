package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slidecraft/slidecraft-backend/internal/models"
	"github.com/slidecraft/slidecraft-backend/internal/utils"
)

const placeholderImagePath = "/static/images/placeholder.jpg"

// ImageService resolves the image prompts embedded in slide content into
// asset paths by calling the image generation backend.
type ImageService struct {
	baseURL    string
	httpClient *http.Client
}

func NewImageService() *ImageService {
	return &ImageService{
		baseURL: utils.GetEnv("IMAGE_SERVICE_URL", ""),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// AttachPlaceholders walks the slide content and sets a placeholder image url
// next to every image prompt, so exports render before assets resolve.
func (s *ImageService) AttachPlaceholders(content models.JSON) {
	walkImageFields(map[string]interface{}(content), func(node map[string]interface{}) {
		node["__image_url__"] = placeholderImagePath
	})
}

// FetchSlideAssets generates an image for every prompt found in the slide
// content, mutating the content in place with the resolved paths. Individual
// failures keep the placeholder and are logged rather than failing the run.
func (s *ImageService) FetchSlideAssets(ctx context.Context, slide *models.Slide, imageModel *models.ModelSpec, apiKey string) []*models.Asset {
	if slide.Content == nil {
		return nil
	}

	var assets []*models.Asset
	walkImageFields(map[string]interface{}(slide.Content), func(node map[string]interface{}) {
		prompt, _ := node["__image_prompt__"].(string)
		if prompt == "" {
			return
		}
		path, err := s.generateImage(ctx, prompt, imageModel, apiKey)
		if err != nil {
			logrus.Warnf("Failed to fetch asset for slide %d of presentation %s: %v", slide.Index, slide.PresentationID, err)
			node["__image_url__"] = placeholderImagePath
			return
		}
		node["__image_url__"] = path
		assets = append(assets, &models.Asset{
			ID:         models.NewAssetID(),
			UserID:     slide.UserID,
			Path:       path,
			IsUploaded: false,
			Metadata:   models.JSON{"prompt": prompt, "slide_id": slide.ID},
			CreatedAt:  time.Now(),
		})
	})
	return assets
}

// GenerateFromPrompt resolves a standalone prompt into an asset path, outside
// of any slide.
func (s *ImageService) GenerateFromPrompt(ctx context.Context, prompt string, model *models.ModelSpec, apiKey string) (string, error) {
	return s.generateImage(ctx, prompt, model, apiKey)
}

func (s *ImageService) generateImage(ctx context.Context, prompt string, model *models.ModelSpec, apiKey string) (string, error) {
	if s.baseURL == "" {
		return placeholderImagePath, nil
	}

	payload := map[string]interface{}{
		"prompt": prompt,
	}
	if model != nil {
		payload["model"] = model
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/images/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", models.NewUpstreamError(fmt.Sprintf("image service returned %d: %s", resp.StatusCode, string(data)))
	}

	var result struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode image response: %w", err)
	}
	if result.Path == "" {
		return "", models.NewUpstreamError("image service returned empty path")
	}
	return result.Path, nil
}

// walkImageFields visits every object in the content tree carrying an
// __image_prompt__ key, including objects nested in arrays.
func walkImageFields(node interface{}, visit func(map[string]interface{})) {
	switch v := node.(type) {
	case map[string]interface{}:
		if _, ok := v["__image_prompt__"]; ok {
			visit(v)
		}
		for _, child := range v {
			walkImageFields(child, visit)
		}
	case models.JSON:
		walkImageFields(map[string]interface{}(v), visit)
	case []interface{}:
		for _, child := range v {
			walkImageFields(child, visit)
		}
	}
}
