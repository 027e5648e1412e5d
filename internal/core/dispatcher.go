package core

import (
	"context"
	"sync"
)

// Executor spools a job to the physical print subsystem. It is the only
// operation in this package expected to block for real wall-clock time.
type Executor interface {
	Execute(ctx context.Context, job *Job) error
}

// DispatchLane is one printer's FIFO of pending job ids plus the job
// currently executing on it. Any caller may push; only the owning
// dispatcher pops, which is what keeps execution per printer serial.
type DispatchLane struct {
	mu      sync.Mutex
	pending []string
	active  string
	wake    chan struct{}
}

func newDispatchLane() *DispatchLane {
	return &DispatchLane{wake: make(chan struct{}, 1)}
}

func (l *DispatchLane) push(id string) {
	l.mu.Lock()
	l.pending = append(l.pending, id)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *DispatchLane) pop() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) == 0 {
		return "", false
	}
	id := l.pending[0]
	l.pending = l.pending[1:]
	l.active = id
	return id, true
}

func (l *DispatchLane) finish() {
	l.mu.Lock()
	l.active = ""
	l.mu.Unlock()
}

// remove takes a job out of the pending queue. Returns false if the job is
// no longer pending here, which includes the case where the dispatcher has
// already picked it up.
func (l *DispatchLane) remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, pid := range l.pending {
		if pid == id {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			return true
		}
	}
	return false
}

func (l *DispatchLane) depth() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.pending)
	if l.active != "" {
		n++
	}
	return n
}

// PrinterDispatcher executes jobs for exactly one printer, strictly in
// submission order. The serialization is structural: this is the only
// goroutine that ever pops the lane.
type PrinterDispatcher struct {
	printerID string
	lane      *DispatchLane
	printers  PrinterSource
	executor  Executor
	sched     *JobScheduler
}

func (d *PrinterDispatcher) run(stop <-chan struct{}) {
	for {
		d.drain(stop)

		select {
		case <-stop:
			return
		case <-d.lane.wake:
		}
	}
}

func (d *PrinterDispatcher) drain(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		id, ok := d.lane.pop()
		if !ok {
			return
		}
		d.dispatch(id)
		d.lane.finish()
	}
}

func (d *PrinterDispatcher) dispatch(id string) {
	job, ok := d.sched.jobSnapshot(id)
	if !ok || job.Status != JobStatusPending {
		return
	}

	// The builder's availability check was advisory; the printer may have
	// gone away since. Re-check before touching hardware.
	status, err := d.printers.GetStatus(d.printerID)
	if err != nil || status == StatusOffline || status == StatusError {
		d.sched.markFailed(id, FailurePrinterUnavailable)
		return
	}

	d.sched.markPrinting(id)

	if err := d.executor.Execute(context.Background(), job); err != nil {
		d.sched.markFailed(id, err.Error())
		return
	}

	d.sched.markCompleted(id)
}
