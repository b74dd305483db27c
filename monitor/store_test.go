package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessedStoreMarkAndContains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")

	store, err := NewProcessedStore(path)
	assert.NoError(t, err)
	assert.False(t, store.Contains("msg-1"))

	assert.NoError(t, store.Mark("msg-1"))
	assert.True(t, store.Contains("msg-1"))
	assert.Equal(t, 1, store.Len())
}

func TestProcessedStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")

	store, err := NewProcessedStore(path)
	assert.NoError(t, err)
	assert.NoError(t, store.Mark("msg-1"))
	assert.NoError(t, store.Mark("msg-2"))

	reloaded, err := NewProcessedStore(path)
	assert.NoError(t, err)
	assert.True(t, reloaded.Contains("msg-1"))
	assert.True(t, reloaded.Contains("msg-2"))
	assert.Equal(t, 2, reloaded.Len())
}

func TestProcessedStoreCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	assert.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	store, err := NewProcessedStore(path)
	assert.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestProcessedStoreMarkIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")

	store, err := NewProcessedStore(path)
	assert.NoError(t, err)
	assert.NoError(t, store.Mark("msg-1"))
	assert.NoError(t, store.Mark("msg-1"))
	assert.Equal(t, 1, store.Len())
}
