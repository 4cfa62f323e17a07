package repository

import (
	"github.com/slidecraft/slidecraft-backend/internal/models"

	"gorm.io/gorm"
)

type SlideRepository struct {
	db *gorm.DB
}

func NewSlideRepository(db *gorm.DB) *SlideRepository {
	return &SlideRepository{db: db}
}

// GetByPresentationID retrieves all slides of a presentation ordered by index
func (r *SlideRepository) GetByPresentationID(presentationID string) ([]*models.Slide, error) {
	var slides []*models.Slide
	err := r.db.Where("presentation_id = ?", presentationID).
		Order("slide_index").
		Find(&slides).Error
	return slides, err
}

// GetFirstSlide retrieves the slide at index 0, or nil when absent
func (r *SlideRepository) GetFirstSlide(presentationID string) (*models.Slide, error) {
	var slide models.Slide
	err := r.db.Where("presentation_id = ? AND slide_index = 0", presentationID).
		First(&slide).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &slide, nil
}

// ReplaceAll swaps the presentation's slide set in one transaction.
// Readers tolerate the brief delete-then-insert window inside the transaction.
func (r *SlideRepository) ReplaceAll(presentationID string, slides []*models.Slide) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("presentation_id = ?", presentationID).Delete(&models.Slide{}).Error; err != nil {
			return err
		}
		if len(slides) == 0 {
			return nil
		}
		return tx.Create(slides).Error
	})
}

// SupersedeRevisions deletes the old slide rows and inserts their replacements
// in one transaction (edit-in-place flow: new identities, same indices).
func (r *SlideRepository) SupersedeRevisions(oldIDs []string, revisions []*models.Slide) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(oldIDs) > 0 {
			if err := tx.Where("id IN ?", oldIDs).Delete(&models.Slide{}).Error; err != nil {
				return err
			}
		}
		if len(revisions) == 0 {
			return nil
		}
		return tx.Create(revisions).Error
	})
}

// CreateAll inserts a batch of slides
func (r *SlideRepository) CreateAll(slides []*models.Slide) error {
	if len(slides) == 0 {
		return nil
	}
	return r.db.Create(slides).Error
}
