package repository

import (
	"github.com/slidecraft/slidecraft-backend/internal/models"

	"gorm.io/gorm"
)

type AssetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Create inserts a single asset record
func (r *AssetRepository) Create(asset *models.Asset) error {
	return r.db.Create(asset).Error
}

// GetByID retrieves an asset by ID
func (r *AssetRepository) GetByID(id string) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.First(&asset, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// GetGeneratedByUserID retrieves a user's generated (not uploaded) assets,
// newest first
func (r *AssetRepository) GetGeneratedByUserID(userID string) ([]*models.Asset, error) {
	var assets []*models.Asset
	err := r.db.Where("user_id = ? AND is_uploaded = ?", userID, false).
		Order("created_at DESC").
		Find(&assets).Error
	return assets, err
}

// Delete deletes an asset record
func (r *AssetRepository) Delete(id string) error {
	return r.db.Delete(&models.Asset{}, "id = ?", id).Error
}
