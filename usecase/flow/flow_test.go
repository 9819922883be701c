package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kompox/flowops/adapters/store/inmem"
	"github.com/kompox/flowops/domain/model"
)

func newUseCase() *UseCase {
	return &UseCase{Repos: &Repos{Flow: inmem.NewFlowRepository()}}
}

func TestRegisterDerivesName(t *testing.T) {
	ctx := context.Background()
	u := newUseCase()

	out, err := u.Register(ctx, &RegisterInput{WorkspaceID: "ws", Entrypoint: "flows/etl.py:load_warehouse", Tags: []string{"etl", "etl"}})
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, "load-warehouse", out.Flow.Name)
	assert.Equal(t, []string{"etl"}, out.Flow.Tags)

	again, err := u.Register(ctx, &RegisterInput{WorkspaceID: "ws", Entrypoint: "flows/etl_v2.py:load_warehouse"})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, out.Flow.ID, again.Flow.ID)
	assert.Equal(t, "flows/etl_v2.py:load_warehouse", again.Flow.Entrypoint)

	other, err := u.Register(ctx, &RegisterInput{WorkspaceID: "ws2", Entrypoint: "flows/etl.py:load_warehouse"})
	require.NoError(t, err)
	assert.True(t, other.Created, "flows are scoped to a workspace")
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	u := newUseCase()
	cases := []*RegisterInput{
		nil,
		{WorkspaceID: "ws"},
		{WorkspaceID: "ws", Entrypoint: "flows/etl.py"},
		{WorkspaceID: "ws", Entrypoint: "flows/etl.py:"},
	}
	for _, in := range cases {
		_, err := u.Register(ctx, in)
		assert.ErrorIs(t, err, model.ErrFlowInvalid, "input %+v", in)
	}
	out, err := u.Register(ctx, &RegisterInput{WorkspaceID: "ws", Name: "named-only"})
	require.NoError(t, err)
	assert.Equal(t, "named-only", out.Flow.Name)
}

func TestGetListDelete(t *testing.T) {
	ctx := context.Background()
	u := newUseCase()
	a, _ := u.Register(ctx, &RegisterInput{WorkspaceID: "ws", Entrypoint: "a.py:alpha", Tags: []string{"x"}})
	_, _ = u.Register(ctx, &RegisterInput{WorkspaceID: "ws", Entrypoint: "b.py:beta"})

	got, err := u.Get(ctx, &GetInput{WorkspaceID: "ws", Ref: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, a.Flow.ID, got.Flow.ID)
	got, err = u.Get(ctx, &GetInput{WorkspaceID: "ws", Ref: a.Flow.ID})
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Flow.Name)
	_, err = u.Get(ctx, &GetInput{WorkspaceID: "other", Ref: a.Flow.ID})
	assert.True(t, errors.Is(err, model.ErrFlowNotFound))

	list, err := u.List(ctx, &ListInput{WorkspaceID: "ws", Tag: "x"})
	require.NoError(t, err)
	assert.Len(t, list.Flows, 1)

	_, err = u.Delete(ctx, &DeleteInput{WorkspaceID: "ws", Ref: "beta"})
	require.NoError(t, err)
	list, _ = u.List(ctx, &ListInput{WorkspaceID: "ws"})
	assert.Len(t, list.Flows, 1)
}
