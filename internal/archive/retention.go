// Package archive enforces the configured retention policy: old terminal
// jobs are pruned from history and stale queued files are evicted along
// with their stored payloads. The scheduling core itself never deletes
// anything; this sweeper is the external policy it defers to.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/HenriqueVilasBoas/Print-Management-System/internal/core"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/db"
	"github.com/HenriqueVilasBoas/Print-Management-System/internal/storage"
)

const defaultRetentionDays = 30

type Sweeper struct {
	fileQueue *core.FileQueueStore
	docs      *storage.DocumentStore
	interval  time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
}

func NewSweeper(fileQueue *core.FileQueueStore, docs *storage.DocumentStore, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Sweeper{
		fileQueue: fileQueue,
		docs:      docs,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				if err := s.Sweep(context.Background()); err != nil {
					log.Printf("[retention] sweep failed: %v", err)
				}
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Sweeper) Sweep(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := s.retentionDays(ctx)
	cutoff := time.Now().AddDate(0, 0, -days)

	pruned, err := db.Jobs.DeleteTerminalJobsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	stale, err := db.Files.ListFilesBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	var evicted int
	for _, f := range stale {
		if err := s.fileQueue.Remove(ctx, f.ID); err != nil {
			log.Printf("[retention] failed to evict file %s: %v", f.ID, err)
			continue
		}
		if err := s.docs.Remove(f.ID); err != nil {
			log.Printf("[retention] failed to remove payload for file %s: %v", f.ID, err)
		}
		evicted++
	}

	if pruned > 0 || evicted > 0 {
		log.Printf("[retention] pruned %d jobs, evicted %d files older than %d days", pruned, evicted, days)
	}

	return nil
}

func (s *Sweeper) retentionDays(ctx context.Context) int {
	value, err := db.Settings.GetSetting(ctx, db.SettingFileRetentionDays)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[retention] failed to read retention setting: %v", err)
		}
		return defaultRetentionDays
	}

	days, err := strconv.Atoi(value)
	if err != nil || days < 1 {
		return defaultRetentionDays
	}
	return days
}
