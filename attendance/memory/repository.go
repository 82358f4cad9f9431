package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/marcelsud/attendance-relay/attendance"
)

/* In-memory implementation of attendance.Repository
 * A single RWMutex guards the map so that inserts, updates and the reaper's
 * sweep are each atomic with respect to one another
 */

type Repository struct {
	mu   sync.RWMutex
	jobs map[string]attendance.Job
}

// NewRepository creates an empty job store
func NewRepository() *Repository {
	return &Repository{
		jobs: make(map[string]attendance.Job),
	}
}

// Put inserts a new job
func (r *Repository) Put(ctx context.Context, job attendance.Job) error {
	if err := job.Status.Validate(); err != nil {
		return fmt.Errorf("validating job %s: %w", job.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("%w: %s", attendance.ErrAlreadyExists, job.ID)
	}
	r.jobs[job.ID] = clone(job)
	return nil
}

// Get retrieves a job by ID
func (r *Repository) Get(ctx context.Context, id string) (attendance.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[id]
	if !exists {
		return attendance.Job{}, fmt.Errorf("%w: %s", attendance.ErrNotFound, id)
	}
	return clone(job), nil
}

// List returns a copy of every stored job
func (r *Repository) List(ctx context.Context) ([]attendance.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]attendance.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, clone(job))
	}
	return jobs, nil
}

// Count returns the number of stored jobs
func (r *Repository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs), nil
}

// Update applies fn to a copy of the job and stores the result; absent IDs are ignored
func (r *Repository) Update(ctx context.Context, id string, fn func(*attendance.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, exists := r.jobs[id]
	if !exists {
		return nil
	}
	job = clone(job)
	fn(&job)
	// the key is fixed even if fn rewrote the ID
	job.ID = id
	r.jobs[id] = clone(job)
	return nil
}

// Evict removes every job matching the predicate
func (r *Repository) Evict(ctx context.Context, match func(attendance.Job) bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, job := range r.jobs {
		if match(clone(job)) {
			delete(r.jobs, id)
			evicted++
		}
	}
	return evicted, nil
}

func clone(job attendance.Job) attendance.Job {
	if job.Response != nil {
		job.Response = append([]byte(nil), job.Response...)
	}
	return job
}
