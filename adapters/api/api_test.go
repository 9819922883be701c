package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kompox/flowops/adapters/store/inmem"
	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/metrics"
	"github.com/kompox/flowops/internal/services"
)

type client struct {
	t   *testing.T
	srv *Server
	ws  string
}

func newClient(t *testing.T) *client {
	t.Helper()
	svc := services.New(inmem.NewStore().Repositories(), services.Options{Metrics: metrics.New()})
	return &client{t: t, srv: New(svc)}
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if c.ws != "" {
		req.Header.Set(HeaderWorkspace, c.ws)
	}
	rec := httptest.NewRecorder()
	c.srv.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestHealthAndVersion(t *testing.T) {
	c := newClient(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/health", nil, &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/version", nil, &body))
	assert.NotEmpty(t, body["api_version"])

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(HeaderAPIVersion, "99.0.0")
	rec := httptest.NewRecorder()
	c.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	c.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeploymentLifecycle(t *testing.T) {
	c := newClient(t)

	var flow struct{ Flow *model.Flow }
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/flows", map[string]any{"entrypoint": "flows/etl.py:etl"}, &flow))

	var dep struct{ Deployment *model.Deployment }
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/deployments", map[string]any{"flow_id": flow.Flow.ID, "name": "nightly"}, &dep))
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/api/deployments", map[string]any{"flow_id": flow.Flow.ID, "name": "nightly"}, nil))

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/deployments/etl%2Fnightly", nil, &dep))
	assert.Equal(t, "nightly", dep.Deployment.Name)

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/deployments/"+dep.Deployment.ID+"/pause", nil, &dep))
	assert.True(t, dep.Deployment.Paused)

	var run struct {
		FlowRun *model.FlowRun `json:"flow_run"`
	}
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/deployments/nightly/create_flow_run", map[string]any{}, &run))
	assert.Equal(t, model.StateScheduled, run.FlowRun.State)

	var errBody errorBody
	assert.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/api/flow_runs/"+run.FlowRun.ID+"/set_state", map[string]any{"state": "COMPLETED"}, &errBody))
	assert.NotEmpty(t, errBody.Error)
	assert.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/flow_runs/"+run.FlowRun.ID+"/set_state", map[string]any{"state": "PENDING"}, &run))
	assert.Equal(t, model.StatePending, run.FlowRun.State)

	var runs struct {
		FlowRuns []*model.FlowRun `json:"flow_runs"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/flow_runs?state=PENDING&state=RUNNING", nil, &runs))
	assert.Len(t, runs.FlowRuns, 1)

	var events struct {
		Events []*model.Event `json:"events"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/events?prefix=flowops.flow-run.", nil, &events))
	assert.Len(t, events.Events, 2)
}

func TestErrors(t *testing.T) {
	c := newClient(t)
	var body errorBody
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/deployments/missing", nil, &body))
	assert.Contains(t, body.Error, "not found")
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/events", map[string]any{"event": ""}, &body))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/incidents/nope", nil, &body))

	req := httptest.NewRequest(http.MethodPost, "/api/flows", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	c.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c.ws = "unknown"
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/flows", nil, &body))
}

func TestWorkspaceScope(t *testing.T) {
	c := newClient(t)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/workspaces", map[string]any{"name": "analytics"}, nil))

	c.ws = "analytics"
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/incidents", map[string]any{"title": "warehouse down"}, nil))
	var list struct {
		Incidents []*model.Incident `json:"incidents"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/incidents?status=active", nil, &list))
	require.Len(t, list.Incidents, 1)

	var inc struct{ Incident *model.Incident }
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/incidents/"+list.Incidents[0].ID+"/resolve", nil, &inc))
	assert.Equal(t, model.IncidentResolved, inc.Incident.Status)

	c.ws = ""
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/incidents", nil, &list))
	assert.Empty(t, list.Incidents, "default workspace sees nothing")
}
