// Package kubernetes runs flow runs as Kubernetes Jobs.
package kubernetes

import (
	"context"
	"fmt"
	"sync"

	infradrv "github.com/kompox/flowops/adapters/drivers/infra"
	"github.com/kompox/flowops/adapters/kube"
	"github.com/kompox/flowops/domain/model"
)

// Labels set on every job.
const (
	LabelFlowRunID   = "flowops.io/flow-run-id"
	LabelFlowRunName = "flowops.io/flow-run-name"
)

// variables are the keys understood in base job templates and run job variables.
type variables struct {
	JobManifest            kube.Manifest     `json:"job_manifest,omitempty"`
	Customizations         []map[string]any  `json:"customizations,omitempty"`
	Namespace              string            `json:"namespace,omitempty"`
	Image                  string            `json:"image,omitempty"`
	ImagePullPolicy        string            `json:"image_pull_policy,omitempty"`
	ServiceAccountName     string            `json:"service_account_name,omitempty"`
	Command                []string          `json:"command,omitempty"`
	Env                    map[string]string `json:"env,omitempty"`
	Labels                 map[string]string `json:"labels,omitempty"`
	StreamOutput           *bool             `json:"stream_output,omitempty"`
	JobWatchTimeoutSeconds int               `json:"job_watch_timeout_seconds,omitempty"`
	PodWatchTimeoutSeconds int               `json:"pod_watch_timeout_seconds,omitempty"`
}

// driver implements the Kubernetes Job infrastructure driver.
type driver struct {
	settings infradrv.Settings

	once   sync.Once
	client *kube.Client
	err    error
}

func init() {
	infradrv.Register(model.WorkPoolTypeKubernetes, func(settings infradrv.Settings) (infradrv.Driver, error) {
		return &driver{settings: settings}, nil
	})
}

// NewWithClient returns a driver using an existing client, e.g. around a fake clientset.
func NewWithClient(settings infradrv.Settings, client *kube.Client) infradrv.Driver {
	d := &driver{settings: settings, client: client}
	d.once.Do(func() {})
	return d
}

// Type returns the work pool type.
func (d *driver) Type() string { return model.WorkPoolTypeKubernetes }

// ValidateTemplate decodes the template and validates its job manifest.
func (d *driver) ValidateTemplate(tpl map[string]any) error {
	cfg, err := d.JobConfig(tpl, &model.FlowRun{})
	if err != nil {
		return err
	}
	return cfg.Validate()
}

// JobConfig merges defaults, the template and the flow run into a job configuration.
func (d *driver) JobConfig(vars map[string]any, run *model.FlowRun) (kube.JobConfig, error) {
	var v variables
	if err := infradrv.Decode(vars, &v); err != nil {
		return kube.JobConfig{}, err
	}
	cfg := kube.DefaultJobConfig()
	cfg.Job = v.JobManifest
	cfg.Customizations = v.Customizations
	if v.Namespace != "" {
		cfg.Namespace = v.Namespace
	}
	if v.Image != "" {
		cfg.Image = v.Image
	}
	cfg.ImagePullPolicy = v.ImagePullPolicy
	cfg.ServiceAccountName = v.ServiceAccountName
	cfg.Command = v.Command
	cfg.Env = v.Env
	if v.StreamOutput != nil {
		cfg.StreamOutput = *v.StreamOutput
	}
	if v.JobWatchTimeoutSeconds > 0 {
		cfg.JobWatchTimeoutSeconds = v.JobWatchTimeoutSeconds
	}
	if v.PodWatchTimeoutSeconds > 0 {
		cfg.PodWatchTimeoutSeconds = v.PodWatchTimeoutSeconds
	}
	cfg.Labels = map[string]string{}
	for k, val := range v.Labels {
		cfg.Labels[k] = val
	}
	if run.ID != "" {
		cfg.Labels[LabelFlowRunID] = run.ID
		cfg.Labels[LabelFlowRunName] = run.Name
		cfg.BaseEnv = infradrv.RunEnvironment(d.settings, run)
	}
	cfg.Name = run.Name
	cfg.APIDNSName = d.settings.APIDNSName
	return cfg, nil
}

func (d *driver) kubeClient(ctx context.Context) (*kube.Client, error) {
	d.once.Do(func() {
		d.client, d.err = kube.NewClient(ctx, d.settings.Kubeconfig, nil)
	})
	return d.client, d.err
}

// Submit creates the job and waits for its pod to exit.
func (d *driver) Submit(ctx context.Context, pool *model.WorkPool, run *model.FlowRun, opts ...model.InfrastructureSubmitOption) (*model.InfrastructureResult, error) {
	o := infradrv.SubmitOptions(opts...)
	cfg, err := d.JobConfig(infradrv.MergeVariables(pool.BaseJobTemplate, run.JobVariables), run)
	if err != nil {
		return nil, err
	}
	client, err := d.kubeClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("kubernetes client: %w", err)
	}
	runner := kube.NewJobRunner(client)
	if d.settings.Out != nil {
		runner.Out = d.settings.Out
	}
	res, err := runner.Run(ctx, cfg, o.Started)
	if err != nil {
		return nil, err
	}
	return &model.InfrastructureResult{Identifier: res.Identifier, StatusCode: res.StatusCode}, nil
}

// Preview renders the job a run of the pool would create, as YAML.
func Preview(settings infradrv.Settings, pool *model.WorkPool, run *model.FlowRun) (string, error) {
	d := &driver{settings: settings}
	cfg, err := d.JobConfig(infradrv.MergeVariables(pool.BaseJobTemplate, run.JobVariables), run)
	if err != nil {
		return "", err
	}
	return cfg.Preview()
}
