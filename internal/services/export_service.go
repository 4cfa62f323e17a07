package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slidecraft/slidecraft-backend/internal/models"
	"github.com/slidecraft/slidecraft-backend/internal/utils"
)

// ExportService renders a finished presentation into a downloadable file. It
// delegates to the renderer backend when one is configured and otherwise
// writes the assembled deck json locally so the edit path keeps working.
type ExportService struct {
	rendererURL string
	exportDir   string
	httpClient  *http.Client
}

func NewExportService() *ExportService {
	return &ExportService{
		rendererURL: utils.GetEnv("RENDERER_URL", ""),
		exportDir:   utils.GetEnv("EXPORT_DIR", "exports"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Export produces the requested format for the presentation and returns the
// stored file path. Supported formats are pptx and pdf.
func (s *ExportService) Export(ctx context.Context, presentation *models.Presentation, slides []*models.Slide, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "pptx"
	}
	if format != "pptx" && format != "pdf" {
		return "", models.NewValidationError(fmt.Sprintf("Unsupported export format: %s", format))
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", models.NewExportError(fmt.Sprintf("failed to create export directory: %v", err))
	}

	if s.rendererURL != "" {
		path, err := s.renderRemote(ctx, presentation, slides, format)
		if err == nil {
			return path, nil
		}
		logrus.Warnf("Renderer export failed for presentation %s, falling back to local deck: %v", presentation.ID, err)
	}

	return s.writeDeck(presentation, slides, format)
}

func (s *ExportService) renderRemote(ctx context.Context, presentation *models.Presentation, slides []*models.Slide, format string) (string, error) {
	payload := map[string]interface{}{
		"presentation": presentation,
		"slides":       slides,
		"format":       format,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal export request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.rendererURL+"/v1/export", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build export request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("renderer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", models.NewExportError(fmt.Sprintf("renderer returned %d: %s", resp.StatusCode, string(data)))
	}

	outPath := filepath.Join(s.exportDir, fmt.Sprintf("%s.%s", presentation.ID, format))
	out, err := os.Create(outPath)
	if err != nil {
		return "", models.NewExportError(fmt.Sprintf("failed to create export file: %v", err))
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", models.NewExportError(fmt.Sprintf("failed to write export file: %v", err))
	}
	return outPath, nil
}

// writeDeck persists the full deck as json. This is the source the editor
// reopens, and doubles as the export artifact when no renderer is running.
func (s *ExportService) writeDeck(presentation *models.Presentation, slides []*models.Slide, format string) (string, error) {
	deck := models.PresentationWithSlides{
		Presentation: *presentation,
		Slides:       slides,
	}
	data, err := json.MarshalIndent(deck, "", "  ")
	if err != nil {
		return "", models.NewExportError(fmt.Sprintf("failed to marshal deck: %v", err))
	}

	outPath := filepath.Join(s.exportDir, fmt.Sprintf("%s.%s.json", presentation.ID, format))
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", models.NewExportError(fmt.Sprintf("failed to write deck file: %v", err))
	}
	return outPath, nil
}

// EditPath returns the editor URL for a presentation.
func (s *ExportService) EditPath(presentationID string) string {
	return fmt.Sprintf("/presentation?id=%s", presentationID)
}
