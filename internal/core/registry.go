package core

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PrinterStore persists printer records and last known status.
type PrinterStore interface {
	ListPrinters(ctx context.Context) ([]*Printer, error)
	InsertPrinter(ctx context.Context, p *Printer) error
	UpdatePrinterStatus(ctx context.Context, id string, status PrinterStatus) error
}

// StatusProber reports the live state of one printer. Implementations talk to
// hardware; the registry only records what they return.
type StatusProber interface {
	Probe(ctx context.Context, p Printer) PrinterStatus
}

// StatusNotifier receives printer status transitions.
type StatusNotifier interface {
	PrinterStatusChanged(printerID, printerName string, oldStatus, newStatus PrinterStatus)
}

// PrinterRegistry holds known printers and their last polled status. Status
// is advisory: it is at most as fresh as the last poll, and consumers that
// care must re-check before acting on it.
type PrinterRegistry struct {
	mu       sync.RWMutex
	printers map[string]*Printer
	store    PrinterStore
	notifier StatusNotifier
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewPrinterRegistry(store PrinterStore, notifier StatusNotifier) (*PrinterRegistry, error) {
	r := &PrinterRegistry{
		printers: make(map[string]*Printer),
		store:    store,
		notifier: notifier,
		stopCh:   make(chan struct{}),
	}

	if store != nil {
		printers, err := store.ListPrinters(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load printers: %w", err)
		}
		for _, p := range printers {
			r.printers[p.ID] = p
		}
	}

	return r, nil
}

func (r *PrinterRegistry) AddPrinter(ctx context.Context, p *Printer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, exists := r.printers[p.ID]; exists {
		return fmt.Errorf("printer %s already registered", p.ID)
	}
	if p.Status == "" {
		p.Status = StatusUnknown
	}
	p.CreatedAt = time.Now()

	if r.store != nil {
		if err := r.store.InsertPrinter(ctx, p); err != nil {
			return fmt.Errorf("failed to insert printer: %w", err)
		}
	}

	r.printers[p.ID] = p
	return nil
}

// GetPrinter returns a snapshot of one printer.
func (r *PrinterRegistry) GetPrinter(id string) (Printer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.printers[id]
	if !ok {
		return Printer{}, fmt.Errorf("%w: printer %s", ErrNotFound, id)
	}
	return *p, nil
}

// GetStatus returns the last known status for a printer.
func (r *PrinterRegistry) GetStatus(id string) (PrinterStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.printers[id]
	if !ok {
		return "", fmt.Errorf("%w: printer %s", ErrNotFound, id)
	}
	return p.Status, nil
}

// List returns a snapshot of all printers, default printer first, then by name.
func (r *PrinterRegistry) List() []Printer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Printer, 0, len(r.printers))
	for _, p := range r.printers {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SetStatus records an externally observed status.
func (r *PrinterRegistry) SetStatus(ctx context.Context, id string, status PrinterStatus) error {
	r.mu.Lock()
	p, ok := r.printers[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: printer %s", ErrNotFound, id)
	}

	oldStatus := p.Status
	p.Status = status
	now := time.Now()
	p.LastSeenAt = &now
	name := p.Name
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.UpdatePrinterStatus(ctx, id, status); err != nil {
			return fmt.Errorf("failed to persist printer status: %w", err)
		}
	}

	if oldStatus != status && r.notifier != nil {
		r.notifier.PrinterStatusChanged(id, name, oldStatus, status)
	}

	return nil
}

// StartPolling probes every printer on the given interval until Stop.
func (r *PrinterRegistry) StartPolling(prober StatusProber, interval time.Duration) {
	if prober == nil || interval <= 0 {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.pollAll(prober)

		for {
			select {
			case <-r.stopCh:
				return
			case <-ticker.C:
				r.pollAll(prober)
			}
		}
	}()
}

func (r *PrinterRegistry) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}

func (r *PrinterRegistry) pollAll(prober StatusProber) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, p := range r.List() {
		status := prober.Probe(ctx, p)
		if err := r.SetStatus(ctx, p.ID, status); err != nil {
			log.Printf("[printers] poll: failed to record status for %s: %v", p.ID, err)
		}
	}
}
