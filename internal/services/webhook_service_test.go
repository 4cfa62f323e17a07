package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/slidecraft/slidecraft-backend/internal/database"
	"github.com/slidecraft/slidecraft-backend/internal/database/repository"
	"github.com/slidecraft/slidecraft-backend/internal/models"
)

func newWebhookService(t *testing.T) *WebhookService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewWebhookService(repository.NewWebhookSubscriptionRepository(db))
}

func TestSubscribeRejectsUnknownEvent(t *testing.T) {
	s := newWebhookService(t)

	_, err := s.Subscribe(nil, &models.SubscribeWebhookRequest{
		URL:   "https://example.com/hook",
		Event: "presentation_deleted",
	})
	require.Error(t, err)
	assert.Equal(t, 400, models.NormalizeError(err).StatusCode)
}

func TestSubscribeRejectsMalformedURL(t *testing.T) {
	s := newWebhookService(t)

	_, err := s.Subscribe(nil, &models.SubscribeWebhookRequest{
		URL:   "not a url",
		Event: models.WebhookEventGenerationCompleted,
	})
	require.Error(t, err)
	assert.Equal(t, 400, models.NormalizeError(err).StatusCode)
}

func TestNotifyDeliversSignedPayload(t *testing.T) {
	s := newWebhookService(t)

	var mu sync.Mutex
	var body []byte
	var signature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		mu.Lock()
		body = data
		signature = r.Header.Get("X-Webhook-Signature")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := s.Subscribe(nil, &models.SubscribeWebhookRequest{
		URL:    server.URL,
		Secret: "hook-secret",
		Event:  models.WebhookEventGenerationCompleted,
	})
	require.NoError(t, err)

	s.Notify(models.WebhookEventGenerationCompleted, models.JSON{"path": "/exports/deck.pptx"})

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, body)
	assert.Equal(t, Sign(body, "hook-secret"), signature)

	var payload models.WebhookPayload
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, models.WebhookEventGenerationCompleted, payload.Event)
	data, ok := payload.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/exports/deck.pptx", data["path"])
}

func TestNotifySkipsSignatureWithoutSecret(t *testing.T) {
	s := newWebhookService(t)

	var mu sync.Mutex
	var signature *string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := r.Header.Get("X-Webhook-Signature")
		mu.Lock()
		signature = &value
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := s.Subscribe(nil, &models.SubscribeWebhookRequest{
		URL:   server.URL,
		Event: models.WebhookEventGenerationFailed,
	})
	require.NoError(t, err)

	s.Notify(models.WebhookEventGenerationFailed, models.JSON{"message": "boom"})

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, signature)
	assert.Empty(t, *signature)
}

func TestNotifyToleratesFailingEndpoint(t *testing.T) {
	s := newWebhookService(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := s.Subscribe(nil, &models.SubscribeWebhookRequest{
		URL:   server.URL,
		Event: models.WebhookEventGenerationFailed,
	})
	require.NoError(t, err)

	// Must not panic or surface an error
	s.Notify(models.WebhookEventGenerationFailed, models.JSON{"message": "boom"})
}

func TestNotifyOnlyReachesMatchingEventSubscribers(t *testing.T) {
	s := newWebhookService(t)

	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := s.Subscribe(nil, &models.SubscribeWebhookRequest{
		URL:   server.URL,
		Event: models.WebhookEventGenerationCompleted,
	})
	require.NoError(t, err)

	s.Notify(models.WebhookEventGenerationFailed, models.JSON{"message": "boom"})

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestUnsubscribeRemovesSubscription(t *testing.T) {
	s := newWebhookService(t)

	subscription, err := s.Subscribe(nil, &models.SubscribeWebhookRequest{
		URL:   "https://example.com/hook",
		Event: models.WebhookEventGenerationCompleted,
	})
	require.NoError(t, err)

	require.NoError(t, s.Unsubscribe(subscription.ID))

	err = s.Unsubscribe(subscription.ID)
	require.Error(t, err)
	assert.Equal(t, 404, models.NormalizeError(err).StatusCode)
}
