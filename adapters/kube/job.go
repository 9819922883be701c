package kube

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	jsonpatch5 "github.com/evanphx/json-patch/v5"
	"sigs.k8s.io/yaml"

	"github.com/kompox/flowops/internal/naming"
)

// Image pull policies accepted by JobConfig.
const (
	PullIfNotPresent = "IfNotPresent"
	PullAlways       = "Always"
	PullNever        = "Never"
)

const (
	// DefaultJobImage runs flow code when no image is configured.
	DefaultJobImage = "flowops/flowops:latest"
	// DefaultNamespace is where jobs are created when no namespace is configured.
	DefaultNamespace = "default"
	// APIURLEnv is the environment variable telling the job where the API lives.
	APIURLEnv = "FLOWOPS_API_URL"
)

// JobConfig describes a Kubernetes Job running one flow run.
type JobConfig struct {
	// Name seeds metadata.generateName. When empty a stable hash of the
	// command and environment is used.
	Name    string
	Command []string
	// Env is user supplied environment. It wins over BaseEnv.
	Env map[string]string
	// BaseEnv is the environment provided by the platform, e.g. the flow run id.
	BaseEnv            map[string]string
	Labels             map[string]string
	Namespace          string
	Image              string
	ImagePullPolicy    string
	ServiceAccountName string
	// Job is the manifest template. Nil means BaseJobManifest.
	Job Manifest
	// Customizations is an RFC 6902 patch applied after the shortcuts.
	Customizations []map[string]any
	// APIDNSName replaces localhost in a platform provided API URL.
	APIDNSName             string
	JobWatchTimeoutSeconds int
	PodWatchTimeoutSeconds int
	StreamOutput           bool
}

// DefaultJobConfig returns a JobConfig with default image, namespace and timeouts.
func DefaultJobConfig() JobConfig {
	return JobConfig{
		Namespace:              DefaultNamespace,
		Image:                  DefaultJobImage,
		JobWatchTimeoutSeconds: 5,
		PodWatchTimeoutSeconds: 60,
		StreamOutput:           true,
	}
}

// Validate checks the pull policy and the job template.
func (c *JobConfig) Validate() error {
	switch c.ImagePullPolicy {
	case "", PullIfNotPresent, PullAlways, PullNever:
	default:
		return fmt.Errorf("invalid image pull policy %q", c.ImagePullPolicy)
	}
	if c.Job != nil {
		if err := ValidateJobManifest(c.Job); err != nil {
			return err
		}
	}
	return nil
}

// Environment returns the merged job environment. A platform provided API
// URL pointing to the local host is rewritten to APIDNSName so the job can
// reach the API from inside the cluster.
func (c *JobConfig) Environment() map[string]string {
	env := make(map[string]string, len(c.BaseEnv)+len(c.Env))
	for k, v := range c.BaseEnv {
		env[k] = v
	}
	for k, v := range c.Env {
		env[k] = v
	}
	if url, ok := env[APIURLEnv]; ok && c.APIDNSName != "" {
		if _, userSet := c.Env[APIURLEnv]; !userSet {
			url = strings.ReplaceAll(url, "localhost", c.APIDNSName)
			env[APIURLEnv] = strings.ReplaceAll(url, "127.0.0.1", c.APIDNSName)
		}
	}
	return env
}

// GenerateName returns the metadata.generateName of the job.
func (c *JobConfig) GenerateName() string {
	if c.Name != "" {
		return naming.Slugify(c.Name, naming.MaxNameSlugLength)
	}
	keys := sortedKeys(c.Env)
	parts := append([]string{}, c.Command...)
	parts = append(parts, keys...)
	for _, k := range keys {
		parts = append(parts, c.Env[k])
	}
	return "flowops-job-" + naming.StableHash(parts...)
}

// shortcuts returns the RFC 6902 operations for the top level settings.
func (c *JobConfig) shortcuts() []map[string]any {
	namespace := c.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	image := c.Image
	if image == "" {
		image = DefaultJobImage
	}
	ops := []map[string]any{
		addOp("/metadata/namespace", namespace),
		addOp("/spec/template/spec/containers/0/image", image),
	}
	for _, k := range sortedKeys(c.Labels) {
		ops = append(ops, addOp("/metadata/labels/"+escapePointer(naming.LabelKey(k)), naming.Slugify(c.Labels[k], naming.MaxLabelSlugLength)))
	}
	env := c.Environment()
	for _, k := range sortedKeys(env) {
		ops = append(ops, addOp("/spec/template/spec/containers/0/env/-", map[string]any{"name": k, "value": env[k]}))
	}
	if c.ImagePullPolicy != "" {
		ops = append(ops, addOp("/spec/template/spec/containers/0/imagePullPolicy", c.ImagePullPolicy))
	}
	if c.ServiceAccountName != "" {
		ops = append(ops, addOp("/spec/template/spec/serviceAccountName", c.ServiceAccountName))
	}
	if len(c.Command) > 0 {
		ops = append(ops, addOp("/spec/template/spec/containers/0/command", c.Command))
	}
	ops = append(ops, addOp("/metadata/generateName", c.GenerateName()))
	return ops
}

// BuildJob renders the final manifest: the template with the shortcut
// patch and then the user customizations applied.
func (c *JobConfig) BuildJob() (Manifest, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	tpl := c.Job
	if tpl == nil {
		tpl = BaseJobManifest()
	}
	doc, err := json.Marshal(tpl)
	if err != nil {
		return nil, fmt.Errorf("encode job template: %w", err)
	}
	if doc, err = applyPatch(doc, c.shortcuts()); err != nil {
		return nil, fmt.Errorf("apply shortcuts: %w", err)
	}
	if len(c.Customizations) > 0 {
		if doc, err = applyPatch(doc, c.Customizations); err != nil {
			return nil, fmt.Errorf("apply customizations: %w", err)
		}
	}
	var out Manifest
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return out, nil
}

// Preview returns the built job as YAML.
func (c *JobConfig) Preview() (string, error) {
	m, err := c.BuildJob()
	if err != nil {
		return "", err
	}
	b, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode job preview: %w", err)
	}
	return string(b), nil
}

func applyPatch(doc []byte, ops []map[string]any) ([]byte, error) {
	raw, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch5.DecodePatch(raw)
	if err != nil {
		return nil, err
	}
	return patch.Apply(doc)
}

func addOp(path string, value any) map[string]any {
	return map[string]any{"op": "add", "path": path, "value": value}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
