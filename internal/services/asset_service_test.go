package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/slidecraft/slidecraft-backend/internal/database"
	"github.com/slidecraft/slidecraft-backend/internal/database/repository"
	"github.com/slidecraft/slidecraft-backend/internal/models"
)

func newAssetService(t *testing.T) (*AssetService, *repository.AssetRepository) {
	t.Helper()
	t.Setenv("IMAGE_SERVICE_URL", "")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	assetRepo := repository.NewAssetRepository(db)
	return NewAssetService(assetRepo, NewImageService()), assetRepo
}

func strPtr(s string) *string { return &s }

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	service, _ := newAssetService(t)

	_, err := service.Generate(context.Background(), nil, "   ", "")
	require.Error(t, err)
	assert.Equal(t, 400, models.NormalizeError(err).StatusCode)
}

func TestGeneratePersistsAssetForCaller(t *testing.T) {
	service, assetRepo := newAssetService(t)

	asset, err := service.Generate(context.Background(), strPtr("11111111-1111-1111-1111-111111111111"), "a lighthouse at dusk", "")
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.NotEmpty(t, asset.Path)
	assert.False(t, asset.IsUploaded)
	assert.Equal(t, "a lighthouse at dusk", asset.Metadata["prompt"])

	stored, err := assetRepo.GetByID(asset.ID)
	require.NoError(t, err)
	assert.Equal(t, asset.Path, stored.Path)
}

func TestListGeneratedReturnsOwnAssetsNewestFirst(t *testing.T) {
	service, assetRepo := newAssetService(t)
	owner := "11111111-1111-1111-1111-111111111111"

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, assetRepo.Create(&models.Asset{
			ID:        models.NewAssetID(),
			UserID:    &owner,
			Path:      "/static/images/a.jpg",
			Metadata:  models.JSON{"order": float64(i)},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	// Another user's asset and an uploaded one must not show up
	require.NoError(t, assetRepo.Create(&models.Asset{
		ID:     models.NewAssetID(),
		UserID: strPtr("22222222-2222-2222-2222-222222222222"),
		Path:   "/static/images/b.jpg",
	}))
	require.NoError(t, assetRepo.Create(&models.Asset{
		ID:         models.NewAssetID(),
		UserID:     &owner,
		Path:       "/static/images/c.jpg",
		IsUploaded: true,
	}))

	assets, err := service.ListGenerated(owner)
	require.NoError(t, err)
	require.Len(t, assets, 3)
	assert.Equal(t, float64(2), assets[0].Metadata["order"])
	assert.Equal(t, float64(0), assets[2].Metadata["order"])
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	service, assetRepo := newAssetService(t)
	owner := "11111111-1111-1111-1111-111111111111"

	asset := &models.Asset{
		ID:     models.NewAssetID(),
		UserID: &owner,
		Path:   "/static/images/placeholder.jpg",
	}
	require.NoError(t, assetRepo.Create(asset))

	err := service.Delete("22222222-2222-2222-2222-222222222222", asset.ID)
	require.Error(t, err)
	assert.Equal(t, 403, models.NormalizeError(err).StatusCode)

	require.NoError(t, service.Delete(owner, asset.ID))

	err = service.Delete(owner, asset.ID)
	require.Error(t, err)
	assert.Equal(t, 404, models.NormalizeError(err).StatusCode)
}
