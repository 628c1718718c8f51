package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/realtime"
)

// pipelineNotifier translates pipeline progress into SSE messages on the
// owner's channel. Satisfies pipeline.Notifier.
type pipelineNotifier struct {
	emit SSEEmitter
}

func NewPipelineNotifier(emit SSEEmitter) *pipelineNotifier {
	return &pipelineNotifier{emit: emit}
}

func (n *pipelineNotifier) send(userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}

func (n *pipelineNotifier) ProjectProcessing(userID, projectID uuid.UUID) {
	n.send(userID, realtime.SSEEventProjectProcessing, map[string]any{
		"project_id": projectID,
	})
}

func (n *pipelineNotifier) TranscriptionCompleted(userID, projectID uuid.UUID) {
	n.send(userID, realtime.SSEEventTranscriptionCompleted, map[string]any{
		"project_id": projectID,
	})
}

func (n *pipelineNotifier) TaskSettled(userID, projectID uuid.UUID, task domain.TaskName, errMessage string) {
	data := map[string]any{
		"project_id": projectID,
		"task":       task,
	}
	if errMessage != "" {
		data["error"] = errMessage
	}
	n.send(userID, realtime.SSEEventTaskSettled, data)
}

func (n *pipelineNotifier) ProjectCompleted(userID, projectID uuid.UUID) {
	n.send(userID, realtime.SSEEventProjectCompleted, map[string]any{
		"project_id": projectID,
	})
}

func (n *pipelineNotifier) ProjectFailed(userID, projectID uuid.UUID, step, message string) {
	n.send(userID, realtime.SSEEventProjectFailed, map[string]any{
		"project_id": projectID,
		"step":       step,
		"error":      message,
	})
}
