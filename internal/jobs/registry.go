// Package jobs tracks in-flight capture jobs and fans out status changes to
// subscribers. The registry is the single source of truth for job state; it is
// never persisted.
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/arkive-app/arkive/internal/constants"
	"github.com/arkive-app/arkive/internal/domain"
	"github.com/arkive-app/arkive/internal/logger"
)

// Update is one status change pushed to subscribers.
type Update struct {
	JobID  string
	Status domain.JobStatus
}

// Subscription is a cancellable stream of updates for one job. Callers must
// call Cancel when done, and must drain C until it closes or Cancel returns.
type Subscription struct {
	C      <-chan Update
	cancel func()
}

func (s *Subscription) Cancel() {
	s.cancel()
}

type entry struct {
	job         *domain.Job
	subscribers map[int]chan Update
	nextSubID   int
	removeTimer *time.Timer
}

// Registry owns the live job table. All access goes through its mutex; jobs
// handed out are copies, never aliases into the table.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	failed  map[string]domain.Job
	log     *logger.Logger

	// gracePeriod delays removal of terminal jobs so pollers see the final
	// status at least once.
	gracePeriod time.Duration
}

func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		entries:     make(map[string]*entry),
		failed:      make(map[string]domain.Job),
		log:         log.WithComponent("jobs"),
		gracePeriod: constants.JobGracePeriod,
	}
}

// Create registers a new job in the pending state.
func (r *Registry) Create(job domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[job.ID]; exists {
		return fmt.Errorf("job %s already registered", job.ID)
	}

	job.Status = domain.JobStatusPending
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	r.entries[job.ID] = &entry{
		job:         &job,
		subscribers: make(map[int]chan Update),
	}
	r.log.Info("Job registered", "job_id", job.ID, "mode", string(job.Mode), "url", job.URL)
	return nil
}

// Get returns a copy of the job, or false if it is unknown.
func (r *Registry) Get(id string) (domain.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return domain.Job{}, false
	}
	return *e.job, true
}

// List returns copies of all live jobs, newest first.
func (r *Registry) List() []domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]domain.Job, 0, len(r.entries))
	for _, e := range r.entries {
		jobs = append(jobs, *e.job)
	}
	for i := 0; i < len(jobs); i++ {
		for j := i + 1; j < len(jobs); j++ {
			if jobs[j].CreatedAt.After(jobs[i].CreatedAt) {
				jobs[i], jobs[j] = jobs[j], jobs[i]
			}
		}
	}
	return jobs
}

// SetStatus moves a job to next, rejecting transitions outside the
// pending -> processing -> completed|failed lifecycle. Terminal jobs are
// broadcast, then scheduled for removal after the grace period; failed jobs
// are additionally kept aside for retry.
func (r *Registry) SetStatus(id string, next domain.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if !e.job.Status.CanTransition(next) {
		return fmt.Errorf("job %s: illegal transition %s -> %s", id, e.job.Status, next)
	}

	e.job.Status = next
	r.broadcastLocked(e, Update{JobID: id, Status: next})
	r.log.Info("Job status changed", "job_id", id, "status", string(next))

	if next.Terminal() {
		if next == domain.JobStatusFailed {
			r.failed[id] = *e.job
		}
		e.removeTimer = time.AfterFunc(r.gracePeriod, func() {
			r.remove(id)
		})
	}
	return nil
}

// Subscribe returns a stream of future status updates for the job. The
// channel closes when the job is removed or the subscription is cancelled.
// An unknown id yields an already-closed stream.
func (r *Registry) Subscribe(id string) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		ch := make(chan Update)
		close(ch)
		return &Subscription{C: ch, cancel: func() {}}
	}

	subID := e.nextSubID
	e.nextSubID++
	ch := make(chan Update, 8)
	e.subscribers[subID] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if e, ok := r.entries[id]; ok {
				if sub, ok := e.subscribers[subID]; ok {
					delete(e.subscribers, subID)
					close(sub)
				}
			}
		})
	}
	return &Subscription{C: ch, cancel: cancel}
}

// ClearFailed drops a failed job from the retry table and removes it from the
// registry if the grace-period timer has not already done so.
func (r *Registry) ClearFailed(id string) {
	r.mu.Lock()
	delete(r.failed, id)
	r.mu.Unlock()
	r.remove(id)
}

// TakeFailed removes and returns a failed job for resubmission.
func (r *Registry) TakeFailed(id string) (domain.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.failed[id]
	if ok {
		delete(r.failed, id)
	}
	return job, ok
}

// FailedJobs returns copies of all jobs held for retry.
func (r *Registry) FailedJobs() []domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]domain.Job, 0, len(r.failed))
	for _, job := range r.failed {
		jobs = append(jobs, job)
	}
	return jobs
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return
	}
	if e.removeTimer != nil {
		e.removeTimer.Stop()
	}
	for subID, ch := range e.subscribers {
		delete(e.subscribers, subID)
		close(ch)
	}
	delete(r.entries, id)
	r.log.Debug("Job removed from registry", "job_id", id)
}

// broadcastLocked pushes an update to every subscriber without blocking. A
// subscriber that has fallen behind its buffer misses the update; the closing
// of its channel on removal still tells it the job is gone.
func (r *Registry) broadcastLocked(e *entry, u Update) {
	for _, ch := range e.subscribers {
		select {
		case ch <- u:
		default:
		}
	}
}
