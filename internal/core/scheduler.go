package core

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// JobStore persists job records across restarts.
type JobStore interface {
	InsertJob(ctx context.Context, job *Job) error
	UpdateJobStatus(ctx context.Context, id string, status JobStatus, failureReason string, startedAt, completedAt *time.Time) error
	ListJobs(ctx context.Context) ([]*Job, error)
}

// JobNotifier receives terminal job transitions.
type JobNotifier interface {
	JobCompleted(job Job)
	JobFailed(job Job)
}

// JobScheduler owns the job lifecycle. It routes submitted jobs onto
// per-printer dispatch lanes and is the single writer for every status
// transition after submission.
type JobScheduler struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	lanes       map[string]*DispatchLane
	dispatchers map[string]*PrinterDispatcher
	printers    PrinterSource
	executor    Executor
	store       JobStore
	notifier    JobNotifier
	stopCh      chan struct{}
	wg          sync.WaitGroup
	running     bool
}

func NewJobScheduler(printers PrinterSource, executor Executor, store JobStore, notifier JobNotifier) *JobScheduler {
	return &JobScheduler{
		jobs:        make(map[string]*Job),
		lanes:       make(map[string]*DispatchLane),
		dispatchers: make(map[string]*PrinterDispatcher),
		printers:    printers,
		executor:    executor,
		store:       store,
		notifier:    notifier,
		stopCh:      make(chan struct{}),
	}
}

// Start recovers persisted jobs and begins dispatching. Jobs found mid-print
// from a previous run cannot be resumed safely, so they fail with a
// distinguished reason and must be resubmitted.
func (s *JobScheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	if err := s.recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	return nil
}

func (s *JobScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
}

func (s *JobScheduler) recover() error {
	if s.store == nil {
		return nil
	}

	jobs, err := s.store.ListJobs(context.Background())
	if err != nil {
		return err
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})

	var interrupted, requeued int
	for _, job := range jobs {
		s.mu.Lock()
		s.jobs[job.ID] = job
		s.mu.Unlock()

		switch job.Status {
		case JobStatusPrinting:
			s.markFailed(job.ID, FailureInterruptedExecution)
			interrupted++
		case JobStatusPending:
			s.laneFor(job.PrinterID).push(job.ID)
			requeued++
		}
	}

	if interrupted > 0 || requeued > 0 {
		log.Printf("[dispatch] recovery: %d interrupted jobs failed, %d pending jobs requeued", interrupted, requeued)
	}

	return nil
}

// Submit appends a pending job to its printer's lane. FIFO within a lane;
// lanes for different printers never wait on each other.
func (s *JobScheduler) Submit(job *Job) error {
	if job == nil || job.Status != JobStatusPending {
		return fmt.Errorf("%w: only pending jobs may be submitted", ErrInvalidState)
	}

	if s.store != nil {
		if err := s.store.InsertJob(context.Background(), job); err != nil {
			return fmt.Errorf("failed to persist job: %w", err)
		}
	}

	s.mu.Lock()
	s.jobs[job.ID] = job.clone()
	s.mu.Unlock()

	s.laneFor(job.PrinterID).push(job.ID)

	return nil
}

// GetStatus returns the current lifecycle state of a job.
func (s *JobScheduler) GetStatus(jobID string) (JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return "", fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	return job.Status, nil
}

// GetJob returns a snapshot of a job.
func (s *JobScheduler) GetJob(jobID string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return Job{}, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	return *job.clone(), nil
}

// Cancel removes a pending job from its lane. A job that is printing or
// already terminal cannot be cancelled: there is no partial-print rollback.
func (s *JobScheduler) Cancel(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}

	if job.Status != JobStatusPending {
		return fmt.Errorf("%w: job %s is %s", ErrInvalidState, jobID, job.Status)
	}

	lane := s.lanes[job.PrinterID]
	if lane == nil || !lane.remove(jobID) {
		// Popped by the dispatcher already; treat as in flight.
		return fmt.Errorf("%w: job %s is being dispatched", ErrInvalidState, jobID)
	}

	now := time.Now()
	job.Status = JobStatusCancelled
	job.CompletedAt = &now
	s.persistStatus(job)

	return nil
}

// History returns terminal jobs, most recent first.
func (s *JobScheduler) History(limit int) []Job {
	s.mu.RLock()
	out := make([]Job, 0)
	for _, job := range s.jobs {
		if job.Status.Terminal() {
			out = append(out, *job.clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].CreatedAt, out[j].CreatedAt
		if out[i].CompletedAt != nil {
			ti = *out[i].CompletedAt
		}
		if out[j].CompletedAt != nil {
			tj = *out[j].CompletedAt
		}
		return ti.After(tj)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// QueueDepth reports pending plus in-flight jobs for one printer.
func (s *JobScheduler) QueueDepth(printerID string) int {
	s.mu.RLock()
	lane := s.lanes[printerID]
	s.mu.RUnlock()

	if lane == nil {
		return 0
	}
	return lane.depth()
}

func (s *JobScheduler) laneFor(printerID string) *DispatchLane {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lane, ok := s.lanes[printerID]; ok {
		return lane
	}

	lane := newDispatchLane()
	d := &PrinterDispatcher{
		printerID: printerID,
		lane:      lane,
		printers:  s.printers,
		executor:  s.executor,
		sched:     s,
	}
	s.lanes[printerID] = lane
	s.dispatchers[printerID] = d

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		d.run(s.stopCh)
	}()

	return lane
}

func (s *JobScheduler) jobSnapshot(jobID string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, false
	}
	return job.clone(), true
}

func (s *JobScheduler) markPrinting(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok || job.Status != JobStatusPending {
		return
	}

	now := time.Now()
	job.Status = JobStatusPrinting
	job.StartedAt = &now
	s.persistStatus(job)
}

func (s *JobScheduler) markCompleted(jobID string) {
	s.mu.Lock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status.Terminal() {
		s.mu.Unlock()
		return
	}

	now := time.Now()
	job.Status = JobStatusCompleted
	job.CompletedAt = &now
	s.persistStatus(job)
	snapshot := *job.clone()
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.JobCompleted(snapshot)
	}
}

func (s *JobScheduler) markFailed(jobID, reason string) {
	s.mu.Lock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status.Terminal() {
		s.mu.Unlock()
		return
	}

	now := time.Now()
	job.Status = JobStatusFailed
	job.FailureReason = reason
	job.CompletedAt = &now
	s.persistStatus(job)
	snapshot := *job.clone()
	s.mu.Unlock()

	log.Printf("[dispatch] job %s failed on printer %s: %s", jobID, snapshot.PrinterID, reason)

	if s.notifier != nil {
		s.notifier.JobFailed(snapshot)
	}
}

func (s *JobScheduler) persistStatus(job *Job) {
	if s.store == nil {
		return
	}
	err := s.store.UpdateJobStatus(context.Background(), job.ID, job.Status, job.FailureReason, job.StartedAt, job.CompletedAt)
	if err != nil {
		log.Printf("[dispatch] failed to persist job %s status %s: %v", job.ID, job.Status, err)
	}
}
