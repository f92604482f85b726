package app

import (
	"fmt"
	"testing"

	"doccov/internal/data/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotWriterFlush(t *testing.T) {
	store := &fakeHistory{}
	w := newSnapshotWriter(store, "proj", 1)
	t.Cleanup(func() { _ = w.Close() })

	for i := 0; i < 50; i++ {
		w.Submit(history.Snapshot{Path: fmt.Sprintf("m%d.py", i)})
	}
	w.Flush()

	assert.Equal(t, 0, w.Pending())
	assert.Len(t, store.saved(), 50, "overflow is written inline")
	assert.Equal(t, "proj", store.project)
}

func TestSnapshotWriterCloseDrains(t *testing.T) {
	store := &fakeHistory{}
	w := newSnapshotWriter(store, "proj", 16)

	for i := 0; i < 10; i++ {
		w.Submit(history.Snapshot{Path: "a.py", Total: i})
	}
	require.NoError(t, w.Close())

	saved := store.saved()
	require.Len(t, saved, 10)
	assert.Equal(t, 0, saved[0].Total)
	assert.Equal(t, 9, saved[9].Total)
}
