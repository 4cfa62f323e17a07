package repository

import (
	"github.com/slidecraft/slidecraft-backend/internal/models"

	"gorm.io/gorm"
)

type PresentationRepository struct {
	db *gorm.DB
}

func NewPresentationRepository(db *gorm.DB) *PresentationRepository {
	return &PresentationRepository{db: db}
}

// Create creates a new presentation
func (r *PresentationRepository) Create(presentation *models.Presentation) error {
	return r.db.Create(presentation).Error
}

// GetByID retrieves a presentation by ID
func (r *PresentationRepository) GetByID(id string) (*models.Presentation, error) {
	var presentation models.Presentation
	err := r.db.First(&presentation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &presentation, nil
}

// GetByUserID retrieves all presentations for a user, newest first
func (r *PresentationRepository) GetByUserID(userID string) ([]*models.Presentation, error) {
	var presentations []*models.Presentation
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&presentations).Error
	return presentations, err
}

// GetByUserIDPaginated retrieves a page of a user's presentations, newest first
func (r *PresentationRepository) GetByUserIDPaginated(userID string, limit, offset int) ([]*models.Presentation, error) {
	var presentations []*models.Presentation
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&presentations).Error
	return presentations, err
}

// CountByUserID returns how many presentations a user owns
func (r *PresentationRepository) CountByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Presentation{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Update saves all presentation fields
func (r *PresentationRepository) Update(presentation *models.Presentation) error {
	return r.db.Save(presentation).Error
}

// Delete deletes a presentation and its slides
func (r *PresentationRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("presentation_id = ?", id).Delete(&models.Slide{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Presentation{}, "id = ?", id).Error
	})
}

// CommitGeneration persists a presentation, its full slide set and the assets
// fetched during generation in one transaction. Existing slides for the
// presentation are removed first so a rerun never leaves a mixed slide set.
func (r *PresentationRepository) CommitGeneration(presentation *models.Presentation, slides []*models.Slide, assets []*models.Asset) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("presentation_id = ?", presentation.ID).Delete(&models.Slide{}).Error; err != nil {
			return err
		}
		if err := tx.Save(presentation).Error; err != nil {
			return err
		}
		if len(slides) > 0 {
			if err := tx.Create(slides).Error; err != nil {
				return err
			}
		}
		if len(assets) > 0 {
			if err := tx.Create(assets).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
