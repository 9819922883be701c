package artifact

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kompox/flowops/adapters/store/inmem"
	"github.com/kompox/flowops/domain/model"
)

func TestArtifacts(t *testing.T) {
	ctx := context.Background()
	repos := inmem.NewStore().Repositories()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	u := &UseCase{Repos: &Repos{Artifact: repos.Artifact}, Now: func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}}

	for _, key := range []string{"Bad_Key", "", "-x"} {
		_, err := u.Create(ctx, &CreateInput{WorkspaceID: "ws", Key: key})
		assert.ErrorIs(t, err, model.ErrArtifactInvalid, key)
	}
	_, err := u.Create(ctx, &CreateInput{WorkspaceID: "ws", Key: "ok", Type: "image"})
	assert.ErrorIs(t, err, model.ErrArtifactInvalid)

	first, err := u.Create(ctx, &CreateInput{WorkspaceID: "ws", Key: "dbt-run-task-summary", Data: "v1", FlowRunID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, model.ArtifactMarkdown, first.Artifact.Type)
	_, err = u.Create(ctx, &CreateInput{WorkspaceID: "ws", Key: "dbt-run-task-summary", Data: "v2", FlowRunID: "r2"})
	require.NoError(t, err)
	_, err = u.Create(ctx, &CreateInput{WorkspaceID: "other", Key: "dbt-run-task-summary", Data: "v3"})
	require.NoError(t, err)

	latest, err := u.Latest(ctx, &LatestInput{WorkspaceID: "ws", Key: "dbt-run-task-summary"})
	require.NoError(t, err)
	assert.Equal(t, "v2", latest.Artifact.Data)

	list, err := u.List(ctx, &ListInput{WorkspaceID: "ws", FlowRunID: "r1"})
	require.NoError(t, err)
	require.Len(t, list.Artifacts, 1)

	got, err := u.Get(ctx, &GetInput{WorkspaceID: "ws", ID: first.Artifact.ID})
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Artifact.Data)

	_, err = u.Latest(ctx, &LatestInput{WorkspaceID: "ws", Key: "missing"})
	assert.ErrorIs(t, err, model.ErrArtifactNotFound)
	_, err = u.Get(ctx, &GetInput{WorkspaceID: "other", ID: first.Artifact.ID})
	assert.ErrorIs(t, err, model.ErrArtifactNotFound)
}
