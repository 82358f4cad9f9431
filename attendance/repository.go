package attendance

import "context"

/* Small, focused interfaces
 * Every method is atomic with respect to the others
 */

// Reader provides read operations for jobs
type Reader interface {
	Get(ctx context.Context, id string) (Job, error)
	// List returns a snapshot of every stored job in no particular order
	List(ctx context.Context) ([]Job, error)
	Count(ctx context.Context) (int, error)
}

// Writer provides write operations for jobs
type Writer interface {
	/* Put inserts a new job
	 * Returns ErrAlreadyExists if the ID is taken
	 */
	Put(ctx context.Context, job Job) error
	/* Update applies fn to the stored job in place
	 * It is a no-op when the ID is absent
	 */
	Update(ctx context.Context, id string, fn func(*Job)) error
	// Evict removes every job for which match returns true and reports how many were removed
	Evict(ctx context.Context, match func(Job) bool) (int, error)
}

type Repository interface {
	Reader
	Writer
}

// EndpointResolver picks the downstream endpoint for an action
type EndpointResolver interface {
	Resolve(action Action) (Endpoint, error)
}
