package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStore persists queue contents. The queue itself is authoritative while
// the process runs; the store is replayed on startup.
type FileStore interface {
	InsertFile(ctx context.Context, f *File) error
	DeleteFile(ctx context.Context, id string) error
	UpdateFileCopies(ctx context.Context, id string, copies int) error
	UpdateFilePositions(ctx context.Context, ids []string) error
	ListFiles(ctx context.Context) ([]*File, error)
}

// FileQueueStore holds the ordered registry of files waiting to be printed.
type FileQueueStore struct {
	mu    sync.RWMutex
	files map[string]*File
	order []string
	store FileStore
}

func NewFileQueueStore(store FileStore) (*FileQueueStore, error) {
	q := &FileQueueStore{
		files: make(map[string]*File),
		store: store,
	}

	if store != nil {
		files, err := store.ListFiles(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load file queue: %w", err)
		}
		sort.Slice(files, func(i, j int) bool {
			return files[i].Position < files[j].Position
		})
		for _, f := range files {
			q.files[f.ID] = f
			q.order = append(q.order, f.ID)
		}
		q.renumberLocked()
	}

	return q, nil
}

func (q *FileQueueStore) Add(ctx context.Context, f *File) (string, error) {
	if f.Name == "" {
		return "", fmt.Errorf("%w: file name is required", ErrInvalidArgument)
	}
	if f.Copies < 1 {
		f.Copies = 1
	}
	if f.Pages < 1 {
		f.Pages = 1
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	f.ID = uuid.NewString()
	f.Position = len(q.order)
	now := time.Now()
	f.CreatedAt = now
	f.UpdatedAt = now

	if q.store != nil {
		if err := q.store.InsertFile(ctx, f); err != nil {
			return "", fmt.Errorf("failed to persist file: %w", err)
		}
	}

	q.files[f.ID] = f
	q.order = append(q.order, f.ID)

	return f.ID, nil
}

func (q *FileQueueStore) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.files[id]; !ok {
		return fmt.Errorf("%w: file %s", ErrNotFound, id)
	}

	if q.store != nil {
		if err := q.store.DeleteFile(ctx, id); err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
	}

	delete(q.files, id)
	for i, fid := range q.order {
		if fid == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	q.renumberLocked()

	return nil
}

func (q *FileQueueStore) SetCopies(ctx context.Context, id string, copies int) error {
	if copies < 1 {
		return fmt.Errorf("%w: copies must be at least 1, got %d", ErrInvalidArgument, copies)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	f, ok := q.files[id]
	if !ok {
		return fmt.Errorf("%w: file %s", ErrNotFound, id)
	}

	if q.store != nil {
		if err := q.store.UpdateFileCopies(ctx, id, copies); err != nil {
			return fmt.Errorf("failed to update copies: %w", err)
		}
	}

	f.Copies = copies
	f.UpdatedAt = time.Now()

	return nil
}

// Reorder applies a complete new ordering. The id set must exactly match the
// current queue contents; anything else leaves the order untouched.
func (q *FileQueueStore) Reorder(ctx context.Context, orderedIDs []string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(orderedIDs) != len(q.order) {
		return fmt.Errorf("%w: reorder set has %d ids, queue has %d", ErrInvalidArgument, len(orderedIDs), len(q.order))
	}

	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, ok := q.files[id]; !ok {
			return fmt.Errorf("%w: unknown file %s in reorder set", ErrInvalidArgument, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate file %s in reorder set", ErrInvalidArgument, id)
		}
		seen[id] = true
	}

	if q.store != nil {
		if err := q.store.UpdateFilePositions(ctx, orderedIDs); err != nil {
			return fmt.Errorf("failed to persist order: %w", err)
		}
	}

	q.order = append(q.order[:0], orderedIDs...)
	q.renumberLocked()

	return nil
}

// GetFile returns a snapshot of one queued file.
func (q *FileQueueStore) GetFile(id string) (File, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	f, ok := q.files[id]
	if !ok {
		return File{}, fmt.Errorf("%w: file %s", ErrNotFound, id)
	}
	return *f, nil
}

// List returns files in their current position order.
func (q *FileQueueStore) List() []File {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]File, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, *q.files[id])
	}
	return out
}

func (q *FileQueueStore) renumberLocked() {
	for i, id := range q.order {
		q.files[id].Position = i
	}
}
