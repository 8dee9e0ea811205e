package scheduler

import (
	"context"
	"time"
)

// Job is one schedulable unit of pipeline work.
type Job interface {
	// Name identifies the job, e.g. "scoring_cycle" or "data_prune".
	Name() string

	// Run executes the job once.
	Run(ctx context.Context) error

	// Schedule returns the six-field cron expression, e.g.
	// "0 */15 9-16 * * 1-5" for the market-hours scoring cycle.
	Schedule() string
}

// JobResult records one finished run.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// historyLimit bounds how many results are retained per job.
const historyLimit = 100

// JobHistory is a bounded window of a job's most recent results.
type JobHistory struct {
	Results []JobResult
}

// Add appends a result, evicting the oldest beyond the window.
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Latest returns up to n of the most recent results, oldest first.
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return nil
	}
	return h.Results[len(h.Results)-n:]
}

// Failed returns the failed results within the window.
func (h *JobHistory) Failed() []JobResult {
	var failed []JobResult
	for _, result := range h.Results {
		if !result.Success {
			failed = append(failed, result)
		}
	}
	return failed
}

// SuccessRate returns the fraction of successful runs, 0 when the
// window is empty.
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	success := 0
	for _, result := range h.Results {
		if result.Success {
			success++
		}
	}
	return float64(success) / float64(len(h.Results))
}
