package kube

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kompox/flowops/internal/logging"
)

// jobPod returns the first pod of the job that left the Pending phase, or
// nil when none did within timeout.
func (c *Client) jobPod(ctx context.Context, namespace, jobName string, timeout time.Duration) (*corev1.Pod, error) {
	logger := logging.FromContext(ctx)
	selector := "job-name=" + jobName
	pods := c.Clientset.CoreV1().Pods(namespace)

	list, err := pods.List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}
	for i := range list.Items {
		if list.Items[i].Status.Phase != corev1.PodPending && list.Items[i].Status.Phase != "" {
			logger.Infof(ctx, "Job %q: Pod has status %q.", jobName, list.Items[i].Status.Phase)
			return &list.Items[i], nil
		}
	}

	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	w, err := pods.Watch(wctx, metav1.ListOptions{LabelSelector: selector, ResourceVersion: list.ResourceVersion})
	if err != nil {
		return nil, fmt.Errorf("watch pods: %w", err)
	}
	defer w.Stop()
	var last corev1.PodPhase
	for {
		select {
		case <-wctx.Done():
			logger.Errorf(ctx, "Job %q: Pod never started.", jobName)
			return nil, nil
		case ev, ok := <-w.ResultChan():
			if !ok {
				logger.Errorf(ctx, "Job %q: Pod never started.", jobName)
				return nil, nil
			}
			pod, isPod := ev.Object.(*corev1.Pod)
			if !isPod {
				continue
			}
			if pod.Status.Phase != last {
				logger.Infof(ctx, "Job %q: Pod has status %q.", jobName, pod.Status.Phase)
			}
			if pod.Status.Phase != corev1.PodPending && pod.Status.Phase != "" {
				return pod, nil
			}
			last = pod.Status.Phase
		}
	}
}

// streamPodLogs follows the logs of the first container of pod into out.
func (c *Client) streamPodLogs(ctx context.Context, pod *corev1.Pod, out io.Writer) error {
	req := c.Clientset.CoreV1().Pods(pod.Namespace).GetLogs(pod.Name, &corev1.PodLogOptions{Follow: true})
	stream, err := req.Stream(ctx)
	if err != nil {
		return fmt.Errorf("get logs stream: %w", err)
	}
	defer stream.Close()
	reader := bufio.NewReader(stream)
	for {
		line, e := reader.ReadBytes('\n')
		if len(line) > 0 {
			if _, err := out.Write(line); err != nil {
				return fmt.Errorf("write logs: %w", err)
			}
		}
		if e != nil {
			if e == io.EOF {
				return nil
			}
			return fmt.Errorf("read logs: %w", e)
		}
	}
}
