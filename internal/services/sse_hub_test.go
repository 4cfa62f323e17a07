package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidecraft/slidecraft-backend/internal/models"
)

func TestSSEHubTracksClientCount(t *testing.T) {
	hub := NewSSEHub()

	first := hub.RegisterClient("task", "t-1")
	second := hub.RegisterClient("task", "t-1")
	assert.Equal(t, 2, hub.GetClientCount("task", "t-1"))
	assert.Equal(t, 0, hub.GetClientCount("task", "t-2"))

	hub.UnregisterClient("task", "t-1", first)
	assert.Equal(t, 1, hub.GetClientCount("task", "t-1"))

	hub.UnregisterClient("task", "t-1", second)
	assert.Equal(t, 0, hub.GetClientCount("task", "t-1"))
}

func TestSSEHubBroadcastReachesTaskSubscribers(t *testing.T) {
	hub := NewSSEHub()
	sub := hub.RegisterClient("task", "t-1")
	defer hub.UnregisterClient("task", "t-1", sub)

	hub.BroadcastTaskUpdate(&models.GenerationTask{ID: "t-1", Status: models.TaskStatusRunning})

	select {
	case frame := <-sub:
		require.Contains(t, string(frame), "event: status")
		assert.Contains(t, string(frame), "t-1")
	default:
		t.Fatal("no frame delivered to subscriber")
	}
}
