package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/slidecraft/slidecraft-backend/internal/database/repository"
	"github.com/slidecraft/slidecraft-backend/internal/models"
)

// AssetService manages standalone image assets generated outside a slide
// deck. Assets produced during deck generation are persisted by the
// generation pipeline instead.
type AssetService struct {
	assetRepo    *repository.AssetRepository
	imageService *ImageService
}

func NewAssetService(assetRepo *repository.AssetRepository, imageService *ImageService) *AssetService {
	return &AssetService{assetRepo: assetRepo, imageService: imageService}
}

// Generate produces one image for a prompt and records it as an asset owned
// by the caller.
func (s *AssetService) Generate(ctx context.Context, userID *string, prompt string, apiKey string) (*models.Asset, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, models.NewValidationError("prompt must not be empty")
	}

	path, err := s.imageService.GenerateFromPrompt(ctx, prompt, nil, apiKey)
	if err != nil {
		return nil, models.NormalizeError(err)
	}

	asset := &models.Asset{
		ID:         models.NewAssetID(),
		UserID:     userID,
		Path:       path,
		IsUploaded: false,
		Metadata:   models.JSON{"prompt": prompt},
		CreatedAt:  time.Now(),
	}
	if err := s.assetRepo.Create(asset); err != nil {
		return nil, fmt.Errorf("failed to save asset: %w", err)
	}
	return asset, nil
}

// ListGenerated returns the caller's generated assets, newest first.
func (s *AssetService) ListGenerated(userID string) ([]*models.Asset, error) {
	assets, err := s.assetRepo.GetGeneratedByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	if assets == nil {
		assets = []*models.Asset{}
	}
	return assets, nil
}

// Delete removes the caller's asset record and its file, when one exists on
// disk.
func (s *AssetService) Delete(userID string, id string) error {
	asset, err := s.assetRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Asset not found")
		}
		return fmt.Errorf("failed to load asset: %w", err)
	}
	if asset.UserID == nil || *asset.UserID != userID {
		return models.NewAuthorizationError("You don't have permission to delete this asset")
	}

	if err := os.Remove(asset.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to remove asset file %s: %v", asset.Path, err)
	}
	return s.assetRepo.Delete(id)
}
