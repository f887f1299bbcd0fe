// Package queue implements the bounded, strictly-FIFO job queue that sits
// between job ingestion (HTTP router, directory scanner) and the worker
// pool. A single mutex guards the backing slice; two condition variables
// mirror the task_queue/not_empty/not_full layout of the original
// transcoder's C. Consumers wait on notEmpty in Pop. notFull is signalled on
// every Pop and broadcast on Close, but no method waits on it: the only push,
// TryPush, rejects a job when the queue is full instead of blocking.
package queue

import (
	"sync"

	"github.com/brightcue/nvtranscode/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	depthGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "nvtranscode",
		Subsystem: "queue",
		Name:      "depth",
		Help:      "Current number of jobs waiting in the queue.",
	})
	pushedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nvtranscode",
		Subsystem: "queue",
		Name:      "pushed_total",
		Help:      "Total jobs accepted onto the queue.",
	})
	rejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nvtranscode",
		Subsystem: "queue",
		Name:      "rejected_total",
		Help:      "Total jobs rejected because the queue was full.",
	})
	poppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nvtranscode",
		Subsystem: "queue",
		Name:      "popped_total",
		Help:      "Total jobs handed to a worker.",
	})
)

// Queue is a bounded FIFO of model.Job. It is safe for concurrent use by
// any number of producers and consumers.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	items    []model.Job
	capacity int
	closed   bool
}

// New returns a Queue with room for capacity jobs.
func New(capacity int) *Queue {
	q := &Queue{
		items:    make([]model.Job, 0, capacity),
		capacity: capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// TryPush attempts to enqueue job without blocking. It returns false if the
// queue is full or has been closed, matching the router's QueueFull
// contract: callers never block a request on queue capacity.
func (q *Queue) TryPush(job model.Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || len(q.items) >= q.capacity {
		rejectedTotal.Inc()
		return false
	}

	q.items = append(q.items, job)
	depthGauge.Set(float64(len(q.items)))
	pushedTotal.Inc()
	q.notEmpty.Signal()
	return true
}

// Pop blocks until a job is available or the queue is closed and drained.
// The second return value is false only once the queue has been closed and
// no jobs remain, signalling the caller to exit.
func (q *Queue) Pop() (model.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}

	if len(q.items) == 0 {
		return model.Job{}, false
	}

	job := q.items[0]
	q.items = q.items[1:]
	depthGauge.Set(float64(len(q.items)))
	poppedTotal.Inc()
	q.notFull.Signal()
	return job, true
}

// Depth returns the current number of queued jobs.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Capacity returns the queue's fixed capacity.
func (q *Queue) Capacity() int {
	return q.capacity
}

// NearFull reports whether the queue has reached the given fraction of its
// capacity (used by the router's 95% soft cap check ahead of a hard push).
func (q *Queue) NearFull(fraction float64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return float64(len(q.items)) >= fraction*float64(q.capacity)
}

// Close marks the queue closed. Blocked and future Pop calls drain
// remaining items then return false; no further pushes are accepted.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}
