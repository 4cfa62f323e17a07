package models

import (
	"time"
)

// Generation task lifecycle. Terminal states are never left and a task is
// never retried; a new submission creates a new task.
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusError     = "error"
)

// GenerationTask is the durable record of a background generation run,
// polled by clients via the status endpoint.
type GenerationTask struct {
	ID      string  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID  *string `json:"user_id,omitempty" gorm:"index;type:uuid"`
	Status  string  `json:"status" gorm:"type:varchar(20);not null;index" example:"pending"`
	Message string  `json:"message" gorm:"type:text" example:"Queued for generation"`
	Result  JSON    `json:"data,omitempty" gorm:"type:jsonb"`
	Error   JSON    `json:"error,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the GenerationTask model
func (GenerationTask) TableName() string {
	return "generation_tasks"
}

// Terminal reports whether the task reached completed or error
func (t *GenerationTask) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusError
}
