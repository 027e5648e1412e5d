package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExecutor struct {
	mu          sync.Mutex
	calls       []string
	gate        chan struct{}
	gatePrinter string
	err         error
}

func (e *stubExecutor) Execute(ctx context.Context, job *Job) error {
	e.mu.Lock()
	e.calls = append(e.calls, job.ID)
	gated := e.gate != nil && (e.gatePrinter == "" || e.gatePrinter == job.PrinterID)
	e.mu.Unlock()

	if gated {
		<-e.gate
	}
	return e.err
}

func (e *stubExecutor) callIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

type memJobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
}

func newMemJobStore() *memJobStore {
	return &memJobStore{jobs: make(map[string]*Job)}
}

func (m *memJobStore) InsertJob(ctx context.Context, job *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job.clone()
	return nil
}

func (m *memJobStore) UpdateJobStatus(ctx context.Context, id string, status JobStatus, failureReason string, startedAt, completedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil
	}
	job.Status = status
	job.FailureReason = failureReason
	job.StartedAt = startedAt
	job.CompletedAt = completedAt
	return nil
}

func (m *memJobStore) ListJobs(ctx context.Context) ([]*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, job.clone())
	}
	return out, nil
}

func readyPrinter(t *testing.T) (*PrinterRegistry, string) {
	t.Helper()
	reg, err := NewPrinterRegistry(nil, nil)
	require.NoError(t, err)
	p := duplexColorPrinter()
	require.NoError(t, reg.AddPrinter(context.Background(), p))
	return reg, p.ID
}

func pendingJob(id, printerID string) *Job {
	return &Job{
		ID:         id,
		PrinterID:  printerID,
		Files:      []FileRef{{FileID: "f-" + id, Name: id + ".pdf", Pages: 1, Copies: 1}},
		Settings:   validSettings(),
		Status:     JobStatusPending,
		TotalPages: 1,
		CreatedAt:  time.Now(),
	}
}

func waitForStatus(t *testing.T, s *JobScheduler, jobID string, want JobStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		status, err := s.GetStatus(jobID)
		return err == nil && status == want
	}, 5*time.Second, 5*time.Millisecond, "job %s never reached %s", jobID, want)
}

func TestSchedulerFIFOWithinLane(t *testing.T) {
	reg, printerID := readyPrinter(t)
	exec := &stubExecutor{}
	s := NewJobScheduler(reg, exec, nil, nil)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	ids := []string{"j1", "j2", "j3"}
	for _, id := range ids {
		require.NoError(t, s.Submit(pendingJob(id, printerID)))
	}

	for _, id := range ids {
		waitForStatus(t, s, id, JobStatusCompleted)
	}
	assert.Equal(t, ids, exec.callIDs())
}

func TestSchedulerLanesRunIndependently(t *testing.T) {
	reg, err := NewPrinterRegistry(nil, nil)
	require.NoError(t, err)
	slow := duplexColorPrinter()
	fast := monoPrinter()
	require.NoError(t, reg.AddPrinter(context.Background(), slow))
	require.NoError(t, reg.AddPrinter(context.Background(), fast))

	gate := make(chan struct{})
	exec := &stubExecutor{gate: gate, gatePrinter: slow.ID}
	s := NewJobScheduler(reg, exec, nil, nil)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	require.NoError(t, s.Submit(pendingJob("slow-job", slow.ID)))
	require.NoError(t, s.Submit(pendingJob("fast-job", fast.ID)))

	// The blocked lane must not hold up the other printer.
	waitForStatus(t, s, "fast-job", JobStatusCompleted)
	waitForStatus(t, s, "slow-job", JobStatusPrinting)

	close(gate)
	waitForStatus(t, s, "slow-job", JobStatusCompleted)
}

func TestSchedulerCancel(t *testing.T) {
	reg, printerID := readyPrinter(t)
	gate := make(chan struct{})
	exec := &stubExecutor{gate: gate}
	s := NewJobScheduler(reg, exec, nil, nil)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	require.NoError(t, s.Submit(pendingJob("active", printerID)))
	waitForStatus(t, s, "active", JobStatusPrinting)

	require.NoError(t, s.Submit(pendingJob("queued", printerID)))

	err := s.Cancel("ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Cancel("active")
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, s.Cancel("queued"))
	status, err := s.GetStatus("queued")
	require.NoError(t, err)
	assert.Equal(t, JobStatusCancelled, status)

	close(gate)
	waitForStatus(t, s, "active", JobStatusCompleted)

	// Terminal jobs stay terminal.
	err = s.Cancel("active")
	assert.ErrorIs(t, err, ErrInvalidState)
	err = s.Cancel("queued")
	assert.ErrorIs(t, err, ErrInvalidState)

	// The cancelled job must never have reached the executor.
	assert.Equal(t, []string{"active"}, exec.callIDs())
}

func TestSchedulerRechecksPrinterAtDispatch(t *testing.T) {
	reg, printerID := readyPrinter(t)
	gate := make(chan struct{})
	exec := &stubExecutor{gate: gate}
	s := NewJobScheduler(reg, exec, nil, nil)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	require.NoError(t, s.Submit(pendingJob("first", printerID)))
	waitForStatus(t, s, "first", JobStatusPrinting)

	// Printer dies while the first job is still on the wire. The queued
	// job passed the builder's advisory check but must fail at dispatch.
	require.NoError(t, reg.SetStatus(context.Background(), printerID, StatusOffline))
	require.NoError(t, s.Submit(pendingJob("second", printerID)))

	close(gate)
	waitForStatus(t, s, "first", JobStatusCompleted)
	waitForStatus(t, s, "second", JobStatusFailed)

	job, err := s.GetJob("second")
	require.NoError(t, err)
	assert.Equal(t, FailurePrinterUnavailable, job.FailureReason)
	assert.Equal(t, []string{"first"}, exec.callIDs())
}

func TestSchedulerExecutionFailure(t *testing.T) {
	reg, printerID := readyPrinter(t)
	exec := &stubExecutor{err: &ExecutionError{Cause: ErrPrinterConnFailed}}
	s := NewJobScheduler(reg, exec, nil, nil)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	require.NoError(t, s.Submit(pendingJob("doomed", printerID)))
	waitForStatus(t, s, "doomed", JobStatusFailed)

	job, err := s.GetJob("doomed")
	require.NoError(t, err)
	assert.Contains(t, job.FailureReason, "connect")
}

func TestSchedulerRecovery(t *testing.T) {
	reg, printerID := readyPrinter(t)
	store := newMemJobStore()

	interrupted := pendingJob("interrupted", printerID)
	interrupted.Status = JobStatusPrinting
	now := time.Now()
	interrupted.StartedAt = &now
	require.NoError(t, store.InsertJob(context.Background(), interrupted))

	queued := pendingJob("queued", printerID)
	queued.CreatedAt = now.Add(time.Millisecond)
	require.NoError(t, store.InsertJob(context.Background(), queued))

	exec := &stubExecutor{}
	s := NewJobScheduler(reg, exec, store, nil)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	waitForStatus(t, s, "queued", JobStatusCompleted)

	job, err := s.GetJob("interrupted")
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, FailureInterruptedExecution, job.FailureReason)

	// The interrupted job must not be re-executed.
	assert.Equal(t, []string{"queued"}, exec.callIDs())

	// Recovery outcomes are persisted for the next restart.
	persisted, err := store.ListJobs(context.Background())
	require.NoError(t, err)
	for _, p := range persisted {
		if p.ID == "interrupted" {
			assert.Equal(t, JobStatusFailed, p.Status)
		}
	}
}

func TestSchedulerSubmitRejectsNonPending(t *testing.T) {
	reg, printerID := readyPrinter(t)
	s := NewJobScheduler(reg, &stubExecutor{}, nil, nil)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	job := pendingJob("done", printerID)
	job.Status = JobStatusCompleted
	err := s.Submit(job)
	assert.ErrorIs(t, err, ErrInvalidState)

	err = s.Submit(nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSchedulerHistory(t *testing.T) {
	reg, printerID := readyPrinter(t)
	exec := &stubExecutor{}
	s := NewJobScheduler(reg, exec, nil, nil)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	for _, id := range []string{"h1", "h2", "h3"} {
		require.NoError(t, s.Submit(pendingJob(id, printerID)))
		waitForStatus(t, s, id, JobStatusCompleted)
	}

	history := s.History(2)
	require.Len(t, history, 2)
	assert.Equal(t, "h3", history[0].ID)
	assert.Equal(t, "h2", history[1].ID)

	all := s.History(0)
	assert.Len(t, all, 3)
}
