package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/zitaharry/ai-podcast-saas/internal/observability"
	"github.com/zitaharry/ai-podcast-saas/internal/platform/logger"
	"github.com/zitaharry/ai-podcast-saas/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log, hub: hub}
}

// SSEStream subscribes the caller to their user channel and streams pipeline
// events until the connection drops.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	client := h.hub.NewSSEClient(userID)
	h.hub.AddChannel(client, realtime.UserChannel(userID))
	h.log.Info("SSE stream open", "user_id", userID, "client_id", client.ID)

	observability.Current().SSEClientsInc()
	defer observability.Current().SSEClientsDec()

	h.hub.ServeHTTP(c.Writer, c.Request, client)
	h.hub.CloseClient(client)
	h.log.Info("SSE stream closed", "user_id", userID, "client_id", client.ID)
}
