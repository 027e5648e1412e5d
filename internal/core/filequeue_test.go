package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addFile(t *testing.T, q *FileQueueStore, name string, pages, copies int) string {
	t.Helper()
	id, err := q.Add(context.Background(), &File{Name: name, Pages: pages, Copies: copies})
	require.NoError(t, err)
	return id
}

func queueIDs(q *FileQueueStore) []string {
	files := q.List()
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	return ids
}

func TestFileQueueAddAssignsPositions(t *testing.T) {
	q, err := NewFileQueueStore(nil)
	require.NoError(t, err)

	a := addFile(t, q, "a.pdf", 3, 1)
	b := addFile(t, q, "b.pdf", 1, 2)
	c := addFile(t, q, "c.txt", 5, 1)

	files := q.List()
	require.Len(t, files, 3)
	assert.Equal(t, []string{a, b, c}, queueIDs(q))
	for i, f := range files {
		assert.Equal(t, i, f.Position)
	}
}

func TestFileQueueAddRequiresName(t *testing.T) {
	q, err := NewFileQueueStore(nil)
	require.NoError(t, err)

	_, err = q.Add(context.Background(), &File{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFileQueueAddClampsPagesAndCopies(t *testing.T) {
	q, err := NewFileQueueStore(nil)
	require.NoError(t, err)

	id := addFile(t, q, "a.pdf", 0, 0)
	f, err := q.GetFile(id)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Pages)
	assert.Equal(t, 1, f.Copies)
}

func TestFileQueueSetCopies(t *testing.T) {
	q, err := NewFileQueueStore(nil)
	require.NoError(t, err)
	id := addFile(t, q, "a.pdf", 2, 1)

	require.NoError(t, q.SetCopies(context.Background(), id, 4))
	f, err := q.GetFile(id)
	require.NoError(t, err)
	assert.Equal(t, 4, f.Copies)

	err = q.SetCopies(context.Background(), id, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = q.SetCopies(context.Background(), "nope", 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileQueueReorder(t *testing.T) {
	q, err := NewFileQueueStore(nil)
	require.NoError(t, err)

	a := addFile(t, q, "a.pdf", 1, 1)
	b := addFile(t, q, "b.pdf", 1, 1)
	c := addFile(t, q, "c.pdf", 1, 1)

	require.NoError(t, q.Reorder(context.Background(), []string{c, a, b}))
	assert.Equal(t, []string{c, a, b}, queueIDs(q))

	for i, f := range q.List() {
		assert.Equal(t, i, f.Position)
	}
}

func TestFileQueueReorderRejectsBadSets(t *testing.T) {
	q, err := NewFileQueueStore(nil)
	require.NoError(t, err)

	a := addFile(t, q, "a.pdf", 1, 1)
	b := addFile(t, q, "b.pdf", 1, 1)
	before := queueIDs(q)

	// Wrong cardinality.
	err = q.Reorder(context.Background(), []string{a})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, before, queueIDs(q))

	// Unknown id.
	err = q.Reorder(context.Background(), []string{a, "nope"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, before, queueIDs(q))

	// Duplicate id.
	err = q.Reorder(context.Background(), []string{b, b})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, before, queueIDs(q))
}

func TestFileQueueRemoveRenumbers(t *testing.T) {
	q, err := NewFileQueueStore(nil)
	require.NoError(t, err)

	a := addFile(t, q, "a.pdf", 1, 1)
	b := addFile(t, q, "b.pdf", 1, 1)
	c := addFile(t, q, "c.pdf", 1, 1)

	require.NoError(t, q.Remove(context.Background(), b))
	assert.Equal(t, []string{a, c}, queueIDs(q))

	f, err := q.GetFile(c)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Position)

	err = q.Remove(context.Background(), b)
	assert.ErrorIs(t, err, ErrNotFound)
}
