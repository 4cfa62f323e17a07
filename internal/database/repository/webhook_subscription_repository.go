package repository

import (
	"github.com/slidecraft/slidecraft-backend/internal/models"

	"gorm.io/gorm"
)

type WebhookSubscriptionRepository struct {
	db *gorm.DB
}

func NewWebhookSubscriptionRepository(db *gorm.DB) *WebhookSubscriptionRepository {
	return &WebhookSubscriptionRepository{db: db}
}

// Create creates a new webhook subscription
func (r *WebhookSubscriptionRepository) Create(subscription *models.WebhookSubscription) error {
	return r.db.Create(subscription).Error
}

// GetByID retrieves a subscription by its token
func (r *WebhookSubscriptionRepository) GetByID(id string) (*models.WebhookSubscription, error) {
	var subscription models.WebhookSubscription
	err := r.db.First(&subscription, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

// GetByEvent retrieves all subscriptions registered for an event
func (r *WebhookSubscriptionRepository) GetByEvent(event string) ([]*models.WebhookSubscription, error) {
	var subscriptions []*models.WebhookSubscription
	err := r.db.Where("event = ?", event).Find(&subscriptions).Error
	return subscriptions, err
}

// Delete removes a subscription
func (r *WebhookSubscriptionRepository) Delete(id string) error {
	return r.db.Delete(&models.WebhookSubscription{}, "id = ?", id).Error
}
