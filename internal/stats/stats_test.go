package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_RecordAndSnapshot(t *testing.T) {
	r := New(4, func() int { return 7 })

	r.RecordSuccess()
	r.RecordSuccess()
	r.RecordFailure()

	snap := r.Snapshot()
	assert.Equal(t, int64(2), snap.Processed)
	assert.Equal(t, int64(1), snap.Failed)
	assert.Equal(t, 7, snap.QueueDepth)
	assert.Equal(t, 4, snap.Workers)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, int64(0))
}

func TestRegistry_SnapshotWithNilDepthFn(t *testing.T) {
	r := New(2, nil)
	snap := r.Snapshot()
	assert.Equal(t, 0, snap.QueueDepth)
}
