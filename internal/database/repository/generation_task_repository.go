package repository

import (
	"github.com/slidecraft/slidecraft-backend/internal/models"

	"gorm.io/gorm"
)

type GenerationTaskRepository struct {
	db *gorm.DB
}

func NewGenerationTaskRepository(db *gorm.DB) *GenerationTaskRepository {
	return &GenerationTaskRepository{db: db}
}

// Create creates a new generation task record
func (r *GenerationTaskRepository) Create(task *models.GenerationTask) error {
	return r.db.Create(task).Error
}

// GetByID retrieves a generation task by ID
func (r *GenerationTaskRepository) GetByID(id string) (*models.GenerationTask, error) {
	var task models.GenerationTask
	err := r.db.First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update saves the task record. The task is only ever written by the single
// worker goroutine that owns it; the status endpoint is read-only.
func (r *GenerationTaskRepository) Update(task *models.GenerationTask) error {
	return r.db.Save(task).Error
}
