package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmartin/gexsight/pkg/config"
	"github.com/hmartin/gexsight/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "console"})
}

// fakeJob counts runs and fails its first n executions.
type fakeJob struct {
	name     string
	schedule string
	failures int
	runs     int
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }
func (j *fakeJob) Run(context.Context) error {
	j.runs++
	if j.runs <= j.failures {
		return errors.New("snapshot table empty")
	}
	return nil
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(testLogger())
	job := &fakeJob{name: "scoring_cycle", schedule: "0 */15 9-16 * * 1-5"}

	require.NoError(t, s.AddJob(job))
	assert.Error(t, s.AddJob(job))
	assert.Equal(t, []string{"scoring_cycle"}, s.GetAllJobs())
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(testLogger())

	assert.Error(t, s.AddJob(&fakeJob{name: "broken", schedule: "not a cron spec"}))
	assert.Empty(t, s.GetAllJobs())
}

func TestGetAllJobsSorted(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.AddJob(&fakeJob{name: "scoring_cycle", schedule: "0 */15 9-16 * * 1-5"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "data_prune", schedule: "0 0 3 * * *"}))

	assert.Equal(t, []string{"data_prune", "scoring_cycle"}, s.GetAllJobs())
}

func TestRunJobRecordsHistory(t *testing.T) {
	s := New(testLogger())
	s.retryDelay = time.Millisecond
	require.NoError(t, s.AddJob(&fakeJob{name: "data_prune", schedule: "0 0 3 * * *"}))

	require.NoError(t, s.RunJob("data_prune"))

	history, err := s.GetJobHistory("data_prune")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.Equal(t, "data_prune", history.Results[0].JobName)
	assert.True(t, history.Results[0].Success)
	assert.InDelta(t, 1.0, history.SuccessRate(), 1e-9)

	_, err = s.GetJobHistory("missing")
	assert.Error(t, err)
}

func TestRunJobRetriesUntilSuccess(t *testing.T) {
	s := New(testLogger())
	s.retryDelay = time.Millisecond
	job := &fakeJob{name: "scoring_cycle", schedule: "0 */15 9-16 * * 1-5", failures: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("scoring_cycle"))

	assert.Equal(t, 3, job.runs)
	stats := s.GetJobStats()["scoring_cycle"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Zero(t, stats.FailureCount)
	require.NotNil(t, stats.LastSuccess)
}

func TestRunJobExhaustsRetries(t *testing.T) {
	s := New(testLogger())
	s.retryDelay = time.Millisecond
	job := &fakeJob{name: "scoring_cycle", schedule: "0 */15 9-16 * * 1-5", failures: 99}
	require.NoError(t, s.AddJob(job))

	err := s.RunJob("scoring_cycle")

	require.Error(t, err)
	assert.Equal(t, "snapshot table empty", err.Error())
	assert.Equal(t, 4, job.runs) // initial attempt plus three retries

	stats := s.GetJobStats()["scoring_cycle"]
	assert.Equal(t, 1, stats.FailureCount)
	require.NotNil(t, stats.LastFailure)
}

func TestRunJobUnknownName(t *testing.T) {
	s := New(testLogger())

	assert.Error(t, s.RunJob("nope"))
}

func TestJobHistoryWindow(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.Add(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.Latest(5), 5)
	assert.Len(t, h.Latest(0), 0)
	assert.Len(t, h.Failed(), historyLimit/2)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
}

func TestJobHistoryEmpty(t *testing.T) {
	h := &JobHistory{}

	assert.Zero(t, h.SuccessRate())
	assert.Empty(t, h.Latest(3))
	assert.Empty(t, h.Failed())
}
