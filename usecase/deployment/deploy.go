package deployment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/thoas/go-funk"

	"github.com/kompox/flowops/domain/model"
	"github.com/kompox/flowops/internal/logging"
	"github.com/kompox/flowops/internal/naming"
	"github.com/kompox/flowops/internal/templating"
	"github.com/kompox/flowops/usecase/flow"
)

// DeployOptions are the command line overrides of a deploy.
type DeployOptions struct {
	Entrypoint    string   `json:"entrypoint,omitempty"`
	FlowName      string   `json:"flow_name,omitempty"`
	Names         []string `json:"names,omitempty"`
	Description   string   `json:"description,omitempty"`
	Version       string   `json:"version,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	WorkPoolName  string   `json:"work_pool_name,omitempty"`
	WorkQueueName string   `json:"work_queue_name,omitempty"`
	// Variables are job variable overrides "key=value". They also template
	// the definition like step outputs.
	Variables []string `json:"variables,omitempty"`
	Cron      string   `json:"cron,omitempty"`
	// Interval is in seconds.
	Interval       int    `json:"interval,omitempty"`
	IntervalAnchor string `json:"interval_anchor,omitempty"`
	// RRule is an RFC 5545 rule, or a JSON object {"rrule": ..., "timezone": ...}.
	RRule    string `json:"rrule,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	// Param entries are "key=value"; values are decoded as JSON when possible.
	Param []string `json:"param,omitempty"`
	// Params is a JSON object replacing all parameters.
	Params *string `json:"params,omitempty"`
	// All deploys every named deployment of a multi-deployment file.
	All bool `json:"all,omitempty"`
}

// hasOverrides reports whether any option besides Names and All was given.
func (o *DeployOptions) hasOverrides() bool {
	return o.Entrypoint != "" || o.FlowName != "" || o.Description != "" || o.Version != "" ||
		len(o.Tags) > 0 || o.WorkPoolName != "" || o.WorkQueueName != "" || len(o.Variables) > 0 ||
		o.Cron != "" || o.Interval != 0 || o.IntervalAnchor != "" || o.RRule != "" ||
		o.Timezone != "" || len(o.Param) > 0 || o.Params != nil
}

// DeployInput is a deployment definition plus the project it belongs to.
type DeployInput struct {
	WorkspaceID string `json:"workspace_id"`
	// Definition is the deployment file content; nil when there is none. It
	// holds a single deployment or a "deployments" list.
	Definition map[string]any `json:"definition,omitempty"`
	// Project is the project file content; its build, push and pull steps
	// apply when a definition has none.
	Project map[string]any `json:"project,omitempty"`
	Options DeployOptions  `json:"options"`
}

// Message levels reported by Deploy.
const (
	MessageInfo    = "info"
	MessageWarning = "warning"
	MessagePanel   = "panel"
)

// Message is a line of progress for the user, in order of occurrence.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// DeployResult describes one created or updated deployment.
type DeployResult struct {
	Deployment *model.Deployment `json:"deployment"`
	// FullName is "flow/deployment".
	FullName string `json:"full_name"`
	Created  bool   `json:"created"`
	// WorkerHint tells how runs get picked up. HintWarning is set when no
	// worker can pick them up.
	WorkerHint  string `json:"worker_hint"`
	HintWarning bool   `json:"hint_warning,omitempty"`
}

// DeployOutput lists deployed results and messages.
type DeployOutput struct {
	Results  []*DeployResult `json:"results"`
	Messages []Message       `json:"messages"`
}

func (o *DeployOutput) add(level, text string) {
	o.Messages = append(o.Messages, Message{Level: level, Text: text})
}

// Deploy creates or updates deployments from a definition.
func (u *UseCase) Deploy(ctx context.Context, in *DeployInput) (*DeployOutput, error) {
	if in == nil || in.WorkspaceID == "" {
		return nil, model.ErrDeploymentInvalid
	}
	out := &DeployOutput{}
	def := MergeDefaults(in.Definition)
	opts := in.Options

	if raw, ok := def["deployments"]; ok {
		items, err := definitionList(raw)
		if err != nil {
			return nil, err
		}
		if err := u.deployMulti(ctx, in.WorkspaceID, items, in.Project, opts, out); err != nil {
			return out, err
		}
		return out, nil
	}
	if len(opts.Names) > 1 {
		return nil, fmt.Errorf("%w: multiple deployment names were provided, but only one deployment was found in the deployment file; provide a single deployment name or remove the name option", model.ErrDeploymentInvalid)
	}
	name := ""
	if len(opts.Names) == 1 {
		name = opts.Names[0]
	}
	res, err := u.deploySingle(ctx, in.WorkspaceID, def, in.Project, &opts, name, out)
	if err != nil {
		return out, err
	}
	out.Results = append(out.Results, res)
	return out, nil
}

func (u *UseCase) deployMulti(ctx context.Context, workspaceID string, items []map[string]any, project map[string]any, opts DeployOptions, out *DeployOutput) error {
	names := opts.Names
	switch {
	case len(names) == 0 && !opts.All:
		return fmt.Errorf("%w: there are multiple deployments declared in the deployment file; specify at least one deployment name", model.ErrDeploymentInvalid)
	case len(names) == 1:
		for _, item := range items {
			if stringField(item, "name") == names[0] {
				opts.Names = nil
				res, err := u.deploySingle(ctx, workspaceID, MergeDefaults(item), project, &opts, "", out)
				if err != nil {
					return err
				}
				out.Results = append(out.Results, res)
				return nil
			}
		}
		return fmt.Errorf("%w: deployment %s not found in the deployment file; specify a valid deployment name", model.ErrDeploymentNotFound, names[0])
	}

	var picked []map[string]any
	if opts.All {
		out.add(MessageInfo, "Deploying all deployments for current project...")
		picked = items
	} else {
		out.add(MessageInfo, "Deploying selected deployments for current project...")
		for _, item := range items {
			if funk.ContainsString(names, stringField(item, "name")) {
				picked = append(picked, item)
			}
		}
	}
	if opts.hasOverrides() {
		out.add(MessageWarning, "You have passed options to the deploy command, but you are deploying multiple deployments. These options will be ignored.")
	}
	for _, item := range picked {
		name := stringField(item, "name")
		if name == "" {
			out.add(MessageWarning, "Discovered deployment with no name. Skipping...")
			continue
		}
		out.add(MessagePanel, "Deploying "+name)
		res, err := u.deploySingle(ctx, workspaceID, MergeDefaults(item), project, &DeployOptions{}, "", out)
		if err != nil {
			return err
		}
		out.Results = append(out.Results, res)
	}
	return nil
}

func (u *UseCase) deploySingle(ctx context.Context, workspaceID string, base, project map[string]any, opts *DeployOptions, optName string, out *DeployOutput) (*DeployResult, error) {
	logger := logging.FromContext(ctx)
	spec := deepCopyMap(base)

	name := firstNonEmpty(optName, stringField(spec, "name"))
	flowName := firstNonEmpty(opts.FlowName, stringField(spec, "flow_name"))
	entrypoint := firstNonEmpty(opts.Entrypoint, stringField(spec, "entrypoint"))

	buildSteps, err := stepsOf(spec, project, "build")
	if err != nil {
		return nil, err
	}
	pushSteps, err := stepsOf(spec, project, "push")
	if err != nil {
		return nil, err
	}
	pullSteps, err := stepsOf(spec, project, "pull")
	if err != nil {
		return nil, err
	}
	delete(spec, "build")
	delete(spec, "push")
	delete(spec, "pull")

	if opts.IntervalAnchor != "" && opts.Interval == 0 {
		return nil, fmt.Errorf("%w: an anchor date can only be provided with an interval schedule", model.ErrScheduleInvalid)
	}
	n := 0
	for _, set := range []bool{opts.Cron != "", opts.RRule != "", opts.Interval != 0} {
		if set {
			n++
		}
	}
	if n > 1 {
		return nil, fmt.Errorf("%w: only one schedule type can be provided", model.ErrScheduleInvalid)
	}
	if flowName == "" && entrypoint == "" {
		return nil, fmt.Errorf("%w: an entrypoint or flow name must be provided", model.ErrDeploymentInvalid)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: a deployment name must be provided", model.ErrDeploymentInvalid)
	}
	if flowName != "" && entrypoint != "" {
		return nil, fmt.Errorf("%w: can only pass an entrypoint or a flow name but not both", model.ErrDeploymentInvalid)
	}
	if len(opts.Param) > 0 && opts.Params != nil {
		return nil, fmt.Errorf("%w: can only pass one of param or params options", model.ErrDeploymentInvalid)
	}

	if entrypoint == "" {
		if u.Locator == nil {
			return nil, fmt.Errorf("%w: flow %q cannot be found; register its entrypoint first", model.ErrFlowNotFound, flowName)
		}
		if entrypoint, err = u.Locator.LookupFlow(flowName); err != nil {
			return nil, err
		}
	}
	flowUC := &flow.UseCase{Repos: &flow.Repos{Flow: u.Repos.Flow}}
	reg, err := flowUC.Register(ctx, &flow.RegisterInput{WorkspaceID: workspaceID, Entrypoint: entrypoint, Name: flowName})
	if err != nil {
		return nil, err
	}
	f := reg.Flow
	spec["flow_name"] = f.Name
	spec["entrypoint"] = entrypoint

	parameters, err := parseParameters(opts, out)
	if err != nil {
		return nil, err
	}
	if parameters != nil {
		spec["parameters"] = parameters
	}

	schedule, err := scheduleFromOptions(opts)
	if err != nil {
		return nil, err
	}

	steps := u.Steps
	if steps == nil {
		steps = NewSteps(nil)
	}
	stepOutputs := map[string]any{}
	for _, step := range append(buildSteps, pushSteps...) {
		res, err := steps.Run(ctx, step)
		if err != nil {
			return nil, err
		}
		for k, v := range res {
			stepOutputs[k] = v
		}
	}
	overrides := map[string]any{}
	for _, v := range opts.Variables {
		k, val, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("%w: variable %q must look like key=value", model.ErrDeploymentInvalid, v)
		}
		overrides[k] = val
	}
	for k, v := range overrides {
		stepOutputs[k] = v
	}

	spec["name"] = name
	if opts.Version != "" {
		spec["version"] = opts.Version
	}
	if len(opts.Tags) > 0 {
		spec["tags"] = stringsToAny(opts.Tags)
	}
	if opts.Description != "" {
		spec["description"] = opts.Description
	} else if stringField(spec, "description") == "" {
		spec["description"] = f.Description
	}
	pool, _ := spec["work_pool"].(map[string]any)
	if pool == nil {
		pool = map[string]any{}
		spec["work_pool"] = pool
	}
	if opts.WorkPoolName != "" {
		pool["name"] = opts.WorkPoolName
	}
	if opts.WorkQueueName != "" {
		pool["work_queue_name"] = opts.WorkQueueName
	}
	jobVars, _ := pool["job_variables"].(map[string]any)
	if jobVars == nil {
		jobVars = map[string]any{}
	}
	for k, v := range overrides {
		jobVars[k] = v
	}
	pool["job_variables"] = jobVars

	paramSchema := spec["parameter_openapi_schema"]
	delete(spec, "parameter_openapi_schema")
	spec = templating.ApplyValuesMap(spec, stepOutputs)
	pullSteps = templateSteps(pullSteps, stepOutputs)

	var ds deploymentSpec
	if err := decodeSpec(spec, &ds); err != nil {
		return nil, err
	}
	if schema, ok := paramSchema.(map[string]any); ok {
		ds.ParameterSchema = schema
	}
	if schedule == nil && ds.Schedule != nil {
		if schedule, err = ds.Schedule.toModel(); err != nil {
			return nil, err
		}
	}

	if ds.WorkPool.Name != "" {
		wp, err := u.findWorkPool(ctx, workspaceID, ds.WorkPool.Name)
		if err != nil {
			return nil, err
		}
		switch {
		case wp == nil:
			out.add(MessageWarning, "This deployment references a work pool that does not exist. This means no worker will be able to pick up its runs. You can create a work pool with the work-pool create command.")
		case wp.Type == model.WorkPoolTypeAgent:
			return nil, fmt.Errorf("%w: cannot deploy project with work pool of type '%s'", model.ErrDeploymentInvalid, model.WorkPoolTypeAgent)
		}
	}

	d, created, err := u.upsert(ctx, &model.Deployment{
		WorkspaceID:     workspaceID,
		FlowID:          f.ID,
		Name:            ds.Name,
		Version:         ds.Version,
		Description:     ds.Description,
		Tags:            funk.UniqString(ds.Tags),
		Parameters:      ds.Parameters,
		ParameterSchema: ds.ParameterSchema,
		Schedule:        schedule,
		WorkPoolName:    ds.WorkPool.Name,
		WorkQueueName:   ds.WorkPool.WorkQueueName,
		Entrypoint:      ds.Entrypoint,
		Path:            ds.Path,
		PullSteps:       pullSteps,
		JobVariables:    ds.WorkPool.JobVariables,
	})
	if err != nil {
		return nil, err
	}
	res := &DeployResult{Deployment: d, FullName: naming.FullDeploymentName(f.Name, d.Name), Created: created}
	switch {
	case d.WorkPoolName != "":
		res.WorkerHint = fmt.Sprintf("To execute flow runs from this deployment, start a worker that pulls work from the %q work pool", d.WorkPoolName)
	case d.WorkQueueName != "":
		res.WorkerHint = fmt.Sprintf("To execute flow runs from this deployment, start a worker that pulls work from the %q work queue", d.WorkQueueName)
	default:
		res.WorkerHint = "This deployment does not specify a work pool or queue, which means no worker will be able to pick up its runs. To add a work pool, edit the deployment spec and re-run this command."
		res.HintWarning = true
	}
	logger.Info(ctx, "deployment applied", "deployment", res.FullName, "id", d.ID, "created", created)
	return res, nil
}

// upsert creates the deployment or replaces the definition of the existing
// deployment with the same flow and name, keeping its paused flag.
func (u *UseCase) upsert(ctx context.Context, d *model.Deployment) (*model.Deployment, bool, error) {
	existing, err := u.findByFlowAndName(ctx, d.WorkspaceID, d.FlowID, d.Name)
	if err != nil {
		return nil, false, err
	}
	t := now()
	d.UpdatedAt = t
	if existing != nil {
		d.ID = existing.ID
		d.Paused = existing.Paused
		d.CreatedAt = existing.CreatedAt
		if err := u.validate(ctx, d); err != nil {
			return nil, false, err
		}
		if err := u.Repos.Deployment.Update(ctx, d); err != nil {
			return nil, false, err
		}
		return d, false, nil
	}
	d.CreatedAt = t
	if err := u.validate(ctx, d); err != nil {
		return nil, false, err
	}
	if err := u.Repos.Deployment.Create(ctx, d); err != nil {
		return nil, false, err
	}
	return d, true, nil
}

func (u *UseCase) findWorkPool(ctx context.Context, workspaceID, name string) (*model.WorkPool, error) {
	if u.Repos.WorkPool == nil {
		return nil, nil
	}
	items, err := u.Repos.WorkPool.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range items {
		if p.WorkspaceID == workspaceID && p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

// deploymentSpec is the typed form of a templated definition.
type deploymentSpec struct {
	Name            string         `json:"name"`
	Version         string         `json:"version"`
	Tags            []string       `json:"tags"`
	Description     string         `json:"description"`
	Schedule        *scheduleSpec  `json:"schedule"`
	FlowName        string         `json:"flow_name"`
	Entrypoint      string         `json:"entrypoint"`
	Path            string         `json:"path"`
	Parameters      map[string]any `json:"parameters"`
	ParameterSchema map[string]any `json:"parameter_openapi_schema"`
	WorkPool        struct {
		Name          string         `json:"name"`
		WorkQueueName string         `json:"work_queue_name"`
		JobVariables  map[string]any `json:"job_variables"`
	} `json:"work_pool"`
}

// scheduleSpec is a schedule as written in a definition; Interval is in seconds.
type scheduleSpec struct {
	Cron       string  `json:"cron"`
	Interval   float64 `json:"interval"`
	AnchorDate string  `json:"anchor_date"`
	RRule      string  `json:"rrule"`
	Timezone   string  `json:"timezone"`
}

func (s *scheduleSpec) toModel() (*model.Schedule, error) {
	sch := &model.Schedule{
		Cron:     s.Cron,
		Interval: time.Duration(s.Interval * float64(time.Second)),
		RRule:    s.RRule,
		Timezone: s.Timezone,
	}
	if sch.Kind() == "" {
		return nil, nil
	}
	if s.AnchorDate != "" {
		t, err := parseAnchor(s.AnchorDate)
		if err != nil {
			return nil, err
		}
		sch.AnchorDate = &t
	}
	if err := sch.Validate(); err != nil {
		return nil, err
	}
	return sch, nil
}

func decodeSpec(spec map[string]any, out *deploymentSpec) error {
	b, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("%w: encode definition: %v", model.ErrDeploymentInvalid, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: decode definition: %v", model.ErrDeploymentInvalid, err)
	}
	return nil
}

// parseParameters returns nil when neither param nor params were given.
func parseParameters(opts *DeployOptions, out *DeployOutput) (map[string]any, error) {
	if opts.Params != nil {
		var params map[string]any
		if err := json.Unmarshal([]byte(*opts.Params), &params); err != nil {
			return nil, fmt.Errorf("%w: params must be a JSON object: %v", model.ErrDeploymentInvalid, err)
		}
		if params == nil {
			params = map[string]any{}
		}
		return params, nil
	}
	if len(opts.Param) == 0 {
		return nil, nil
	}
	params := map[string]any{}
	for _, p := range opts.Param {
		k, raw, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("%w: param %q must look like key=value", model.ErrDeploymentInvalid, p)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			out.add(MessageInfo, fmt.Sprintf("The parameter value %s is parsed as a JSON string", raw))
			params[k] = v
		} else {
			params[k] = raw
		}
	}
	return params, nil
}

// scheduleFromOptions builds the schedule given on the command line, or nil.
func scheduleFromOptions(opts *DeployOptions) (*model.Schedule, error) {
	var s *model.Schedule
	switch {
	case opts.Cron != "":
		s = &model.Schedule{Cron: opts.Cron, Timezone: opts.Timezone}
	case opts.Interval != 0:
		s = &model.Schedule{Interval: time.Duration(opts.Interval) * time.Second, Timezone: opts.Timezone}
		if opts.IntervalAnchor != "" {
			t, err := parseAnchor(opts.IntervalAnchor)
			if err != nil {
				return nil, err
			}
			s.AnchorDate = &t
		}
	case opts.RRule != "":
		var obj scheduleSpec
		if err := json.Unmarshal([]byte(opts.RRule), &obj); err == nil && obj.RRule != "" {
			s = &model.Schedule{RRule: obj.RRule, Timezone: obj.Timezone}
			if opts.Timezone != "" {
				s.Timezone = opts.Timezone
			}
		} else {
			s = &model.Schedule{RRule: opts.RRule, Timezone: opts.Timezone}
		}
	default:
		return nil, nil
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

var anchorLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseAnchor(s string) (time.Time, error) {
	for _, layout := range anchorLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid anchor date %q", model.ErrScheduleInvalid, s)
}

// stepsOf returns the key steps of the definition, or of the project when
// the definition has none.
func stepsOf(spec, project map[string]any, key string) ([]map[string]any, error) {
	raw, ok := spec[key]
	if !ok {
		raw = project[key]
	}
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s steps must be a list", model.ErrDeploymentInvalid, key)
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s step %d must be a mapping", model.ErrDeploymentInvalid, key, i)
		}
		out = append(out, m)
	}
	return out, nil
}

func templateSteps(steps []map[string]any, values map[string]any) []map[string]any {
	if steps == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(steps))
	for _, s := range steps {
		out = append(out, templating.ApplyValuesMap(s, values))
	}
	return out
}

func definitionList(raw any) ([]map[string]any, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: deployments must be a list", model.ErrDeploymentInvalid)
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: deployment %d must be a mapping", model.ErrDeploymentInvalid, i)
		}
		out = append(out, m)
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// deepCopyMap copies nested maps and lists so templating never touches the caller's definition.
func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopy(item)
		}
		return out
	}
	return v
}
