package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRoundtrip(t *testing.T) {
	store, err := NewDocumentStore(t.TempDir())
	require.NoError(t, err)

	n, err := store.Save("doc-1", strings.NewReader("%PDF-1.4 hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(14), n)

	rc, err := store.Open("doc-1")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF-1.4 hello", string(data))

	require.NoError(t, store.Remove("doc-1"))
	_, err = store.Open("doc-1")
	assert.Error(t, err)

	// Removing twice is not an error.
	assert.NoError(t, store.Remove("doc-1"))
}
