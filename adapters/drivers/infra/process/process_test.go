package process

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infradrv "github.com/kompox/flowops/adapters/drivers/infra"
	"github.com/kompox/flowops/domain/model"
)

func TestSubmit(t *testing.T) {
	var out bytes.Buffer
	d := &driver{settings: infradrv.Settings{APIURL: "http://127.0.0.1:4200/api", Out: &out}}
	pool := &model.WorkPool{
		Name: "local",
		Type: model.WorkPoolTypeProcess,
		BaseJobTemplate: map[string]any{
			"command": []any{"sh", "-c", `echo "run=$` + infradrv.EnvFlowRunID + ` greeting=$GREETING"; exit 3`},
		},
	}
	run := &model.FlowRun{ID: "fr-1", JobVariables: map[string]any{"env": map[string]any{"GREETING": "hi"}}}

	var started string
	res, err := d.Submit(context.Background(), pool, run, model.WithStartedCallback(func(id string) { started = id }))
	require.NoError(t, err)
	assert.Equal(t, 3, res.StatusCode)
	assert.Equal(t, res.Identifier, started)
	assert.Contains(t, out.String(), "run=fr-1 greeting=hi")
}

func TestSubmitRequiresCommand(t *testing.T) {
	d := &driver{}
	_, err := d.Submit(context.Background(), &model.WorkPool{Name: "local"}, &model.FlowRun{ID: "fr-1"})
	require.Error(t, err)
	assert.NoError(t, d.ValidateTemplate(map[string]any{"command": []any{"true"}}))
	assert.Error(t, d.ValidateTemplate(map[string]any{"command": "true"}))
}
