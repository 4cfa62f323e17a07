package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Webhook events external subscribers can register for
const (
	WebhookEventGenerationCompleted = "presentation_generation_completed"
	WebhookEventGenerationFailed    = "presentation_generation_failed"
)

// ValidWebhookEvent reports whether event names a dispatchable event
func ValidWebhookEvent(event string) bool {
	return event == WebhookEventGenerationCompleted || event == WebhookEventGenerationFailed
}

// WebhookSubscription registers an external URL for generation outcome events
type WebhookSubscription struct {
	ID     string  `json:"id" gorm:"primaryKey;type:varchar(80)"`
	UserID *string `json:"user_id,omitempty" gorm:"index;type:uuid"`
	URL    string  `json:"url" gorm:"type:text;not null"`
	Secret *string `json:"-" gorm:"type:varchar(255)"`
	Event  string  `json:"event" gorm:"type:varchar(80);not null;index"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the WebhookSubscription model
func (WebhookSubscription) TableName() string {
	return "webhook_subscriptions"
}

// NewWebhookSubscriptionID generates an opaque subscription token
func NewWebhookSubscriptionID() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	return fmt.Sprintf("webhook-%s", hex.EncodeToString(buf))
}

// SubscribeWebhookRequest registers a new subscription
type SubscribeWebhookRequest struct {
	URL    string `json:"url" binding:"required" example:"https://example.com/hooks/slidecraft"`
	Secret string `json:"secret,omitempty"`
	Event  string `json:"event" binding:"required" example:"presentation_generation_completed"`
}

// SubscribeWebhookResponse returns the subscription token
type SubscribeWebhookResponse struct {
	ID string `json:"id"`
}

// UnsubscribeWebhookRequest removes a subscription by token
type UnsubscribeWebhookRequest struct {
	ID string `json:"id" binding:"required"`
}

// WebhookPayload is the body POSTed to subscriber URLs
type WebhookPayload struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
