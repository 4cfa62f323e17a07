package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/slidecraft/slidecraft-backend/internal/middleware"
	"github.com/slidecraft/slidecraft-backend/internal/services"
)

type TaskHandler struct {
	generationService *services.GenerationService
	sseHub            *services.SSEHub
}

func NewTaskHandler(generationService *services.GenerationService, sseHub *services.SSEHub) *TaskHandler {
	return &TaskHandler{
		generationService: generationService,
		sseHub:            sseHub,
	}
}

// GetTaskStatus godoc
// @Summary Poll a background generation task
// @Tags tasks
// @Produce json
// @Param id path string true "Generation task ID"
// @Success 200 {object} models.GenerationTask
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/presentation/status/{id} [get]
func (h *TaskHandler) GetTaskStatus(c *gin.Context) {
	task, err := h.generationService.GetTask(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// StreamTaskProgress godoc
// @Summary Stream progress updates for a generation task via SSE
// @Description Emits a status frame for every stage transition until the task reaches a terminal state
// @Tags tasks
// @Produce text/event-stream
// @Param id path string true "Generation task ID"
// @Success 200 "SSE stream"
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/presentation/status/{id}/stream [get]
func (h *TaskHandler) StreamTaskProgress(c *gin.Context) {
	task, err := h.generationService.GetTask(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	// Set headers for SSE
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable buffering for nginx

	clientChan := h.sseHub.RegisterClient("task", task.ID)
	defer h.sseHub.UnregisterClient("task", task.ID, clientChan)
	logrus.Debugf("SSE client subscribed to task %s (%d active)", task.ID, h.sseHub.GetClientCount("task", task.ID))

	// Send the current snapshot so late subscribers see where the run is
	h.sseHub.BroadcastTaskUpdate(task)

	if task.Terminal() {
		h.drainAndClose(c, clientChan)
		return
	}

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			logrus.Infof("SSE client disconnected from task %s", task.ID)
			return
		case <-heartbeat.C:
			h.sseHub.SendHeartbeat("task", task.ID)
		case message, ok := <-clientChan:
			if !ok {
				return
			}
			if _, err := c.Writer.Write(message); err != nil {
				logrus.Errorf("Failed to write SSE message: %v", err)
				return
			}
			c.Writer.Flush()

			// A fresh read decides termination; the frame itself is opaque here
			current, err := h.generationService.GetTask(middleware.CurrentUserID(c), task.ID)
			if err == nil && current.Terminal() {
				return
			}
		}
	}
}

// drainAndClose flushes whatever is buffered for an already-finished task
func (h *TaskHandler) drainAndClose(c *gin.Context, clientChan chan []byte) {
	for {
		select {
		case message, ok := <-clientChan:
			if !ok {
				return
			}
			if _, err := c.Writer.Write(message); err != nil {
				return
			}
			c.Writer.Flush()
		default:
			return
		}
	}
}
