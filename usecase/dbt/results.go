package dbt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

// NodeResult is one entry of run_results.json.
type NodeResult struct {
	UniqueID      string  `json:"unique_id"`
	Status        string  `json:"status"`
	Message       string  `json:"message"`
	ExecutionTime float64 `json:"execution_time"`
}

// RunResults is the subset of target/run_results.json used for summaries.
type RunResults struct {
	Results     []NodeResult `json:"results"`
	ElapsedTime float64      `json:"elapsed_time"`
}

// ReadRunResults loads a run_results.json file.
func ReadRunResults(fs afero.Fs, path string) (*RunResults, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var r RunResults
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &r, nil
}

func isFailure(status string) bool { return status == "error" || status == "fail" }

// HasFailures reports whether any node errored or failed.
func (r *RunResults) HasFailures() bool {
	for _, n := range r.Results {
		if isFailure(n.Status) {
			return true
		}
	}
	return false
}

// Markdown renders the summary artifact: failed and skipped nodes with
// their messages, then the successful ones.
func (r *RunResults) Markdown(command string) string {
	var failed, skipped, ok []NodeResult
	for _, n := range r.Results {
		switch {
		case isFailure(n.Status):
			failed = append(failed, n)
		case n.Status == "skipped":
			skipped = append(skipped, n)
		default:
			ok = append(ok, n)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# dbt %s Task Summary\n", command)
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\n## Failed Nodes ❌\n\n")
		for _, n := range failed {
			fmt.Fprintf(&b, "### %s\n\nStatus: %s\n\nMessage:\n\n```\n%s\n```\n\n", n.UniqueID, n.Status, n.Message)
		}
	}
	if len(skipped) > 0 {
		fmt.Fprintf(&b, "\n## Skipped Nodes ⏭\n\n")
		for _, n := range skipped {
			fmt.Fprintf(&b, "* %s\n", n.UniqueID)
		}
	}
	if len(ok) > 0 {
		fmt.Fprintf(&b, "\n## Successful Nodes ✅\n\n")
		for _, n := range ok {
			fmt.Fprintf(&b, "* %s (%s, %.2fs)\n", n.UniqueID, n.Status, n.ExecutionTime)
		}
	}
	fmt.Fprintf(&b, "\nTotal: %d nodes, %d failed, %d skipped.\n", len(r.Results), len(failed), len(skipped))
	return b.String()
}
