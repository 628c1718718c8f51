package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/entitlement"
	"github.com/zitaharry/ai-podcast-saas/internal/realtime"
)

func TestMissingTasksAfterUpgrade(t *testing.T) {
	p := &domain.Project{
		Summary: datatypes.JSON(`{"full":"done"}`),
	}

	missing := missingTasks(p, entitlement.TierPro)
	require.Equal(t, []domain.TaskName{
		domain.TaskSocialPosts,
		domain.TaskTitles,
		domain.TaskHashtags,
	}, missing)
}

func TestMissingTasksUltraIncludesChapterTasks(t *testing.T) {
	p := &domain.Project{
		Summary:     datatypes.JSON(`{"full":"done"}`),
		SocialPosts: datatypes.JSON(`{"twitter":"x"}`),
		Titles:      datatypes.JSON(`{"titles":["a"]}`),
		Hashtags:    datatypes.JSON(`{"hashtags":["#a"]}`),
	}

	missing := missingTasks(p, entitlement.TierUltra)
	require.Equal(t, []domain.TaskName{
		domain.TaskKeyMoments,
		domain.TaskYouTubeTimestamps,
	}, missing)
}

func TestMissingTasksNothingMissing(t *testing.T) {
	p := &domain.Project{
		Summary: datatypes.JSON(`{"full":"done"}`),
	}
	require.Empty(t, missingTasks(p, entitlement.TierFree))
}

type recordingEmitter struct {
	msgs []realtime.SSEMessage
}

func (r *recordingEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	r.msgs = append(r.msgs, msg)
}

func TestPipelineNotifierRoutesToUserChannel(t *testing.T) {
	emit := &recordingEmitter{}
	n := NewPipelineNotifier(emit)

	userID := uuid.New()
	projectID := uuid.New()

	n.ProjectProcessing(userID, projectID)
	n.TaskSettled(userID, projectID, domain.TaskTitles, "ValidationError: too few usable titles")
	n.ProjectCompleted(userID, projectID)

	require.Len(t, emit.msgs, 3)
	for _, msg := range emit.msgs {
		require.Equal(t, realtime.UserChannel(userID), msg.Channel)
	}
	require.Equal(t, realtime.SSEEventProjectProcessing, emit.msgs[0].Event)
	require.Equal(t, realtime.SSEEventTaskSettled, emit.msgs[1].Event)

	data, ok := emit.msgs[1].Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "ValidationError: too few usable titles", data["error"])
}

func TestPipelineNotifierNilUserIsNoop(t *testing.T) {
	emit := &recordingEmitter{}
	n := NewPipelineNotifier(emit)

	n.ProjectCompleted(uuid.Nil, uuid.New())
	require.Empty(t, emit.msgs)
}
