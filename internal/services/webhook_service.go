package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slidecraft/slidecraft-backend/internal/database/repository"
	"github.com/slidecraft/slidecraft-backend/internal/models"
)

// WebhookService delivers lifecycle events to subscriber endpoints. Delivery
// is best effort: failures are logged and never affect the generation run.
type WebhookService struct {
	subscriptionRepo *repository.WebhookSubscriptionRepository
	httpClient       *http.Client
}

func NewWebhookService(subscriptionRepo *repository.WebhookSubscriptionRepository) *WebhookService {
	return &WebhookService{
		subscriptionRepo: subscriptionRepo,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Subscribe registers a url for an event and returns the subscription.
func (s *WebhookService) Subscribe(userID *string, req *models.SubscribeWebhookRequest) (*models.WebhookSubscription, error) {
	if !models.ValidWebhookEvent(req.Event) {
		return nil, models.NewValidationError(fmt.Sprintf("Unsupported webhook event: %s", req.Event))
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		return nil, models.NewValidationError("Invalid webhook URL")
	}

	var secret *string
	if req.Secret != "" {
		secret = &req.Secret
	}
	subscription := &models.WebhookSubscription{
		ID:     models.NewWebhookSubscriptionID(),
		UserID: userID,
		URL:    req.URL,
		Secret: secret,
		Event:  req.Event,
	}
	if err := s.subscriptionRepo.Create(subscription); err != nil {
		return nil, fmt.Errorf("failed to create webhook subscription: %w", err)
	}
	return subscription, nil
}

// Unsubscribe removes a subscription by its token.
func (s *WebhookService) Unsubscribe(id string) error {
	if _, err := s.subscriptionRepo.GetByID(id); err != nil {
		return models.NewNotFoundError("Webhook subscription not found")
	}
	return s.subscriptionRepo.Delete(id)
}

// Notify posts the event payload to every subscriber of the event. Each
// delivery gets its own request; a failing endpoint only logs a warning.
func (s *WebhookService) Notify(event string, data interface{}) {
	subscriptions, err := s.subscriptionRepo.GetByEvent(event)
	if err != nil {
		logrus.Errorf("Failed to load webhook subscriptions for %s: %v", event, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload := models.WebhookPayload{
		Event: event,
		Data:  data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logrus.Errorf("Failed to marshal webhook payload for %s: %v", event, err)
		return
	}

	for _, subscription := range subscriptions {
		if err := s.deliver(subscription, body); err != nil {
			logrus.Warnf("Webhook delivery to %s failed: %v", subscription.URL, err)
		}
	}
}

func (s *WebhookService) deliver(subscription *models.WebhookSubscription, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, subscription.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if subscription.Secret != nil && *subscription.Secret != "" {
		req.Header.Set("X-Webhook-Signature", Sign(body, *subscription.Secret))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the hex encoded HMAC-SHA256 of the payload under the secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
