// Package infradrv runs flow runs on the infrastructure behind a work pool.
// Drivers live under adapters/drivers/infra/<type> and register themselves
// by work pool type from init().
package infradrv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/kompox/flowops/domain/model"
)

// Environment variables passed to every flow run.
const (
	EnvFlowRunID = "FLOWOPS__FLOW_RUN_ID"
	EnvAPIURL    = "FLOWOPS_API_URL"
)

// Settings are shared by all drivers of a worker process.
type Settings struct {
	// Kubeconfig is the kubeconfig path. Empty means in-cluster, then default rules.
	Kubeconfig string
	// APIURL is exported to flow runs as FLOWOPS_API_URL.
	APIURL string
	// APIDNSName replaces localhost in APIURL for runs inside a cluster.
	APIDNSName string
	// Out receives run output.
	Out io.Writer
}

// Driver executes flow runs for one work pool type.
type Driver interface {
	// Type returns the work pool type served, e.g. "kubernetes".
	Type() string
	// ValidateTemplate checks a work pool base job template.
	ValidateTemplate(tpl map[string]any) error
	// Submit runs the flow run to completion.
	Submit(ctx context.Context, pool *model.WorkPool, run *model.FlowRun, opts ...model.InfrastructureSubmitOption) (*model.InfrastructureResult, error)
}

// driverFactory is a constructor function for an infrastructure driver.
type driverFactory func(settings Settings) (Driver, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]driverFactory{}
)

// Register makes a driver available for the given work pool type. Drivers
// should call this from their init() function.
func Register(poolType string, factory driverFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[poolType] = factory
}

// GetDriverFactory returns the driver factory function for the given type.
func GetDriverFactory(poolType string) (driverFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, exists := registry[poolType]
	return factory, exists
}

// ValidateTemplate validates tpl with the driver of poolType. Types without
// a registered driver accept any template.
func ValidateTemplate(poolType string, tpl map[string]any) error {
	factory, ok := GetDriverFactory(poolType)
	if !ok || len(tpl) == 0 {
		return nil
	}
	d, err := factory(Settings{})
	if err != nil {
		return err
	}
	return d.ValidateTemplate(tpl)
}

// Port implements model.InfrastructurePort by dispatching on the pool type.
type Port struct {
	settings Settings
	mu       sync.Mutex
	drivers  map[string]Driver
}

var _ model.InfrastructurePort = (*Port)(nil)

// NewPort returns a Port creating drivers on first use.
func NewPort(settings Settings) *Port {
	return &Port{settings: settings, drivers: map[string]Driver{}}
}

func (p *Port) driver(poolType string) (Driver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.drivers[poolType]; ok {
		return d, nil
	}
	factory, ok := GetDriverFactory(poolType)
	if !ok {
		return nil, fmt.Errorf("no infrastructure driver for work pool type %q", poolType)
	}
	d, err := factory(p.settings)
	if err != nil {
		return nil, fmt.Errorf("create %s driver: %w", poolType, err)
	}
	p.drivers[poolType] = d
	return d, nil
}

// Submit runs the flow run with the driver of the pool type.
func (p *Port) Submit(ctx context.Context, pool *model.WorkPool, run *model.FlowRun, opts ...model.InfrastructureSubmitOption) (*model.InfrastructureResult, error) {
	if pool == nil || run == nil {
		return nil, fmt.Errorf("pool and run are required")
	}
	d, err := p.driver(pool.Type)
	if err != nil {
		return nil, err
	}
	return d.Submit(ctx, pool, run, opts...)
}

// MergeVariables overlays run job variables on the pool base template.
// Top level keys of vars win.
func MergeVariables(tpl, vars map[string]any) map[string]any {
	out := make(map[string]any, len(tpl)+len(vars))
	for k, v := range tpl {
		out[k] = v
	}
	for k, v := range vars {
		out[k] = v
	}
	return out
}

// Decode converts merged variables into a driver specific struct through
// their JSON form.
func Decode(vars map[string]any, out any) error {
	b, err := json.Marshal(vars)
	if err != nil {
		return fmt.Errorf("encode job variables: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode job variables: %w", err)
	}
	return nil
}

// SubmitOptions folds opts into a struct.
func SubmitOptions(opts ...model.InfrastructureSubmitOption) model.InfrastructureSubmitOptions {
	var o model.InfrastructureSubmitOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RunEnvironment returns the platform environment of a flow run.
func RunEnvironment(settings Settings, run *model.FlowRun) map[string]string {
	env := map[string]string{EnvFlowRunID: run.ID}
	if settings.APIURL != "" {
		env[EnvAPIURL] = settings.APIURL
	}
	return env
}
