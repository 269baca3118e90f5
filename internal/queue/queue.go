// Package queue provides a FIFO admission gate bounding concurrent tasks.
package queue

import (
	"sync"
)

// Queue admits at most limit concurrently-running tasks, holding excess work
// in FIFO order. It is a counting gate, not a worker pool: each admitted task
// runs on its own goroutine.
type Queue struct {
	mu      sync.Mutex
	limit   int
	running int
	pending []func()
}

func New(limit int) *Queue {
	if limit < 1 {
		limit = 1
	}
	return &Queue{limit: limit}
}

// Enqueue accepts a task. If a slot is free the task starts immediately,
// otherwise it waits its turn. The queue itself releases the slot when the
// task returns, so a task cannot leak its slot by forgetting to signal.
func (q *Queue) Enqueue(task func()) {
	q.mu.Lock()
	if q.running < q.limit {
		q.running++
		q.mu.Unlock()
		go q.run(task)
		return
	}
	q.pending = append(q.pending, task)
	q.mu.Unlock()
}

func (q *Queue) run(task func()) {
	defer q.taskCompleted()
	task()
}

// taskCompleted frees the slot and admits the oldest pending task, if any.
func (q *Queue) taskCompleted() {
	q.mu.Lock()
	q.running--
	var next func()
	if len(q.pending) > 0 {
		next = q.pending[0]
		q.pending = q.pending[1:]
		q.running++
	}
	q.mu.Unlock()

	if next != nil {
		go q.run(next)
	}
}

// Running reports how many tasks currently hold a slot.
func (q *Queue) Running() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Pending reports how many tasks are waiting for a slot.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
