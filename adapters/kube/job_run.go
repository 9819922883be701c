package kube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kompox/flowops/internal/logging"
)

// JobResult is the outcome of a job run. StatusCode is -1 when the job
// vanished, its pod never started or it did not complete in time.
type JobResult struct {
	Identifier string
	StatusCode int
}

// JobRunner creates jobs from a JobConfig and waits for them.
type JobRunner struct {
	Client *Client
	// Out receives streamed pod logs. Defaults to stdout.
	Out io.Writer
}

// NewJobRunner returns a runner using client.
func NewJobRunner(client *Client) *JobRunner {
	return &JobRunner{Client: client, Out: os.Stdout}
}

// Run creates the job, calls started with its name and watches it to the end.
func (r *JobRunner) Run(ctx context.Context, cfg JobConfig, started func(name string)) (*JobResult, error) {
	if err := r.Client.ready(); err != nil {
		return nil, err
	}
	manifest, err := cfg.BuildJob()
	if err != nil {
		return nil, err
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if err := r.Client.EnsureNamespace(ctx, namespace); err != nil {
		return nil, err
	}
	name, err := r.createJob(ctx, namespace, manifest)
	if err != nil {
		return nil, err
	}
	if started != nil {
		started(name)
	}
	return r.watchJob(ctx, namespace, name, cfg)
}

func (r *JobRunner) createJob(ctx context.Context, namespace string, manifest Manifest) (string, error) {
	b, err := json.Marshal(manifest)
	if err != nil {
		return "", fmt.Errorf("encode job: %w", err)
	}
	var job batchv1.Job
	if err := json.Unmarshal(b, &job); err != nil {
		return "", fmt.Errorf("decode job: %w", err)
	}
	created, err := r.Client.Clientset.BatchV1().Jobs(namespace).Create(ctx, &job, metav1.CreateOptions{})
	if err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	return created.Name, nil
}

func (r *JobRunner) watchJob(ctx context.Context, namespace, name string, cfg JobConfig) (*JobResult, error) {
	logger := logging.FromContext(ctx)
	jobs := r.Client.Clientset.BatchV1().Jobs(namespace)

	job, err := jobs.Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			logger.Errorf(ctx, "Job %q was removed.", name)
			return &JobResult{Identifier: name, StatusCode: -1}, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}

	pod, err := r.Client.jobPod(ctx, namespace, name, seconds(cfg.PodWatchTimeoutSeconds))
	if err != nil {
		return nil, err
	}
	if pod == nil {
		return &JobResult{Identifier: job.Name, StatusCode: -1}, nil
	}

	if cfg.StreamOutput {
		out := r.Out
		if out == nil {
			out = os.Stdout
		}
		if err := r.Client.streamPodLogs(ctx, pod, out); err != nil {
			logger.Warn(ctx, "log streaming failed", "job", name, "err", err)
		}
	}

	logger.Debugf(ctx, "Job %q: Starting watch for job completion", name)
	done, err := r.waitJob(ctx, namespace, name, seconds(cfg.JobWatchTimeoutSeconds))
	if err != nil {
		return nil, err
	}
	if !done {
		logger.Errorf(ctx, "Job %q: Job did not complete.", name)
		return &JobResult{Identifier: job.Name, StatusCode: -1}, nil
	}

	pod, err = r.Client.Clientset.CoreV1().Pods(namespace).Get(ctx, pod.Name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("read pod status: %w", err)
	}
	return &JobResult{Identifier: job.Name, StatusCode: exitCode(pod)}, nil
}

// waitJob reports whether the job finished within timeout.
func (r *JobRunner) waitJob(ctx context.Context, namespace, name string, timeout time.Duration) (bool, error) {
	jobs := r.Client.Clientset.BatchV1().Jobs(namespace)
	job, err := jobs.Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get job: %w", err)
	}
	if jobFinished(job) {
		return true, nil
	}

	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	w, err := jobs.Watch(wctx, metav1.ListOptions{
		FieldSelector:   "metadata.name=" + name,
		ResourceVersion: job.ResourceVersion,
	})
	if err != nil {
		return false, fmt.Errorf("watch job: %w", err)
	}
	defer w.Stop()
	for {
		select {
		case <-wctx.Done():
			return false, nil
		case ev, ok := <-w.ResultChan():
			if !ok {
				return false, nil
			}
			if j, isJob := ev.Object.(*batchv1.Job); isJob && j.Name == name && jobFinished(j) {
				return true, nil
			}
		}
	}
}

// jobFinished reports completion, or a Failed condition which never gets a
// completion time.
func jobFinished(job *batchv1.Job) bool {
	if job.Status.CompletionTime != nil {
		return true
	}
	for _, c := range job.Status.Conditions {
		if c.Type == batchv1.JobFailed && c.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

func exitCode(pod *corev1.Pod) int {
	if len(pod.Status.ContainerStatuses) == 0 {
		return -1
	}
	term := pod.Status.ContainerStatuses[0].State.Terminated
	if term == nil {
		return -1
	}
	return int(term.ExitCode)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return time.Hour
	}
	return time.Duration(n) * time.Second
}
