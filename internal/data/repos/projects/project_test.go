package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/zitaharry/ai-podcast-saas/internal/data/repos/testutil"
	"github.com/zitaharry/ai-podcast-saas/internal/domain"
	"github.com/zitaharry/ai-podcast-saas/internal/pkg/dbctx"
)

func newRepo(t *testing.T) (ProjectRepo, dbctx.Context) {
	t.Helper()
	repo := NewProjectRepo(testutil.DB(t), testutil.Logger(t))
	return repo, dbctx.Context{Ctx: context.Background()}
}

func seedProject(t *testing.T, repo ProjectRepo, dbc dbctx.Context) *domain.Project {
	t.Helper()
	p := &domain.Project{
		OwnerUserID: uuid.New(),
		AudioRef:    "audio/test/episode.mp3",
		JobStatus:   datatypes.NewJSONType(domain.NewJobStatus()),
	}
	require.NoError(t, repo.Create(dbc, p))
	return p
}

func TestSaveArtifactsBatchesColumns(t *testing.T) {
	repo, dbc := newRepo(t)
	p := seedProject(t, repo, dbc)

	err := repo.SaveArtifacts(dbc, p.ID, map[domain.TaskName]datatypes.JSON{
		domain.TaskSummary:  datatypes.JSON(`{"full":"a summary"}`),
		domain.TaskHashtags: datatypes.JSON(`{"hashtags":["#go"]}`),
	})
	require.NoError(t, err)

	got, err := repo.GetByID(dbc, p.ID)
	require.NoError(t, err)
	require.True(t, got.HasArtifact(domain.TaskSummary))
	require.True(t, got.HasArtifact(domain.TaskHashtags))
	require.False(t, got.HasArtifact(domain.TaskTitles))
	require.JSONEq(t, `{"full":"a summary"}`, string(got.Summary))
}

func TestSaveArtifactsSkipsUnknownAndEmpty(t *testing.T) {
	repo, dbc := newRepo(t)
	p := seedProject(t, repo, dbc)

	err := repo.SaveArtifacts(dbc, p.ID, map[domain.TaskName]datatypes.JSON{
		domain.TaskName("bogus"): datatypes.JSON(`{}`),
		domain.TaskTitles:        nil,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(dbc, p.ID)
	require.NoError(t, err)
	require.False(t, got.HasArtifact(domain.TaskTitles))
}

func TestSaveArtifactsReplacesExistingWholeValue(t *testing.T) {
	repo, dbc := newRepo(t)
	p := seedProject(t, repo, dbc)

	require.NoError(t, repo.SaveArtifacts(dbc, p.ID, map[domain.TaskName]datatypes.JSON{
		domain.TaskTitles: datatypes.JSON(`{"titles":["First attempt","Old alt"],"note":"v1"}`),
	}))
	require.NoError(t, repo.SaveArtifacts(dbc, p.ID, map[domain.TaskName]datatypes.JSON{
		domain.TaskTitles: datatypes.JSON(`{"titles":["Second attempt"]}`),
	}))

	got, err := repo.GetByID(dbc, p.ID)
	require.NoError(t, err)
	require.JSONEq(t, `{"titles":["Second attempt"]}`, string(got.Titles))
	require.NotContains(t, string(got.Titles), "v1")
}

func TestMergeJobErrorsSetAndClear(t *testing.T) {
	repo, dbc := newRepo(t)
	p := seedProject(t, repo, dbc)

	require.NoError(t, repo.MergeJobErrors(dbc, p.ID, map[string]string{
		string(domain.TaskTitles):   "ValidationError: too few usable titles",
		string(domain.TaskHashtags): "ProviderError: bad payload",
	}, nil))

	got, err := repo.GetByID(dbc, p.ID)
	require.NoError(t, err)
	require.Len(t, got.JobErrors.Data(), 2)

	require.NoError(t, repo.MergeJobErrors(dbc, p.ID, nil, []string{string(domain.TaskTitles)}))

	got, err = repo.GetByID(dbc, p.ID)
	require.NoError(t, err)
	merged := got.JobErrors.Data()
	require.Len(t, merged, 1)
	require.Contains(t, merged, string(domain.TaskHashtags))
}

func TestMergeJobErrorsOverwritesExistingEntry(t *testing.T) {
	repo, dbc := newRepo(t)
	p := seedProject(t, repo, dbc)

	require.NoError(t, repo.MergeJobErrors(dbc, p.ID, map[string]string{
		string(domain.TaskSummary): "NetworkError: timeout",
	}, nil))
	require.NoError(t, repo.MergeJobErrors(dbc, p.ID, map[string]string{
		string(domain.TaskSummary): "ProviderError: schema mismatch",
	}, nil))

	got, err := repo.GetByID(dbc, p.ID)
	require.NoError(t, err)
	require.Equal(t, "ProviderError: schema mismatch", got.JobErrors.Data()[string(domain.TaskSummary)])
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	repo, dbc := newRepo(t)

	got, err := repo.GetByID(dbc, uuid.New())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSetJobStatusReplacesWholeValue(t *testing.T) {
	repo, dbc := newRepo(t)
	p := seedProject(t, repo, dbc)

	js := domain.JobStatus{Transcription: domain.PhaseCompleted, ContentGeneration: domain.PhaseRunning}
	require.NoError(t, repo.SetJobStatus(dbc, p.ID, js))

	got, err := repo.GetByID(dbc, p.ID)
	require.NoError(t, err)
	require.Equal(t, js, got.JobStatus.Data())
}

func TestSoftDeleteHidesRow(t *testing.T) {
	repo, dbc := newRepo(t)
	p := seedProject(t, repo, dbc)

	require.NoError(t, repo.SoftDelete(dbc, p.ID))

	got, err := repo.GetByID(dbc, p.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}
