package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/brightcue/nvtranscode/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_PushPopFIFO(t *testing.T) {
	q := New(4)

	require.True(t, q.TryPush(model.Job{InputPath: "/in/a.ts"}))
	require.True(t, q.TryPush(model.Job{InputPath: "/in/b.ts"}))
	require.True(t, q.TryPush(model.Job{InputPath: "/in/c.ts"}))

	j1, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "/in/a.ts", j1.InputPath)

	j2, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "/in/b.ts", j2.InputPath)
}

func TestQueue_TryPushRejectsWhenFull(t *testing.T) {
	q := New(2)
	require.True(t, q.TryPush(model.Job{InputPath: "a"}))
	require.True(t, q.TryPush(model.Job{InputPath: "b"}))
	assert.False(t, q.TryPush(model.Job{InputPath: "c"}))
	assert.Equal(t, 2, q.Depth())
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := New(4)
	done := make(chan model.Job, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		job, ok := q.Pop()
		if ok {
			done <- job
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.True(t, q.TryPush(model.Job{InputPath: "/in/delayed.ts"}))

	select {
	case job := <-done:
		assert.Equal(t, "/in/delayed.ts", job.InputPath)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after push")
	}
	wg.Wait()
}

func TestQueue_CloseDrainsThenStops(t *testing.T) {
	q := New(4)
	require.True(t, q.TryPush(model.Job{InputPath: "a"}))

	q.Close()

	job, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", job.InputPath)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestQueue_CloseUnblocksWaitingConsumers(t *testing.T) {
	q := New(4)
	var wg sync.WaitGroup
	results := make(chan bool, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, ok := q.Pop()
		results <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-results:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Close")
	}
	wg.Wait()
}

func TestQueue_NearFull(t *testing.T) {
	q := New(20)
	for i := 0; i < 19; i++ {
		require.True(t, q.TryPush(model.Job{InputPath: "x"}))
	}
	assert.True(t, q.NearFull(0.95))
}

func TestQueue_TryPushAfterCloseRejected(t *testing.T) {
	q := New(4)
	q.Close()
	assert.False(t, q.TryPush(model.Job{InputPath: "a"}))
}
