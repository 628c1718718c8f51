package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/services"
)

type RetryHandler struct {
	log *logger.Logger
	svc *services.RetryService
}

func NewRetryHandler(log *logger.Logger, svc *services.RetryService) *RetryHandler {
	return &RetryHandler{log: log, svc: svc}
}

// RetryTask re-runs one failed generation task and waits for it to settle.
func (h *RetryHandler) RetryTask(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	task, err := domain.ParseTaskName(c.Param("task"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"message": err.Error(), "code": "validation"},
		})
		return
	}
	if err := h.svc.RetryTask(c.Request.Context(), userID, projectID, task); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task, "status": "completed"})
}

// GenerateMissing fills artifacts the caller's current tier entitles but the
// project does not yet have, typically after a plan upgrade.
func (h *RetryHandler) GenerateMissing(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.GenerateMissingForTier(c.Request.Context(), userID, projectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}
