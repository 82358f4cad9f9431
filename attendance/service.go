package attendance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// MaxRecentActivities caps the recent activity feed
const MaxRecentActivities = 10

// UseCase defines the business operations exposed to the transport layer
type UseCase interface {
	Submit(ctx context.Context, event Event) (Receipt, error)
	Status(ctx context.Context, jobID string) (Job, error)
	RecentActivities(ctx context.Context, limit int) ([]Job, error)
}

// Deliverer runs the outbound part of a submission
type Deliverer interface {
	Deliver(ctx context.Context, jobID string, event Event)
}

type Service struct {
	Repo      Repository
	Deliverer Deliverer
	Logger    zerolog.Logger
	Now       func() time.Time

	inflight sync.WaitGroup
}

// NewService creates a new attendance service with dependency injection
func NewService(repo Repository, deliverer Deliverer, logger zerolog.Logger) *Service {
	return &Service{
		Repo:      repo,
		Deliverer: deliverer,
		Logger:    logger.With().Str("component", "dispatcher").Logger(),
		Now:       time.Now,
	}
}

// Submit validates the event, records a processing job and hands delivery to a background goroutine.
// It returns as soon as the job is stored; the outcome is only visible through Status.
func (s *Service) Submit(ctx context.Context, event Event) (Receipt, error) {
	action, err := event.Validate()
	if err != nil {
		return Receipt{}, err
	}

	job := NewJob(uuid.New().String(), action, strings.TrimSpace(event.Name), s.Now())
	if err := s.Repo.Put(ctx, job); err != nil {
		return Receipt{}, fmt.Errorf("storing job: %w", err)
	}

	// the client going away must not cut the delivery short
	deliveryCtx := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.Deliverer.Deliver(deliveryCtx, job.ID, event)
	}()

	s.Logger.Info().
		Str("job_id", job.ID).
		Str("action", action.String()).
		Str("name", job.Name).
		Msg("attendance submitted")

	return Receipt{JobID: job.ID, Action: action}, nil
}

// Status returns the current snapshot of a job
func (s *Service) Status(ctx context.Context, jobID string) (Job, error) {
	job, err := s.Repo.Get(ctx, jobID)
	if err != nil {
		return Job{}, fmt.Errorf("getting job: %w", err)
	}
	return job, nil
}

// RecentActivities lists successful jobs, newest first, capped at MaxRecentActivities
func (s *Service) RecentActivities(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 || limit > MaxRecentActivities {
		limit = MaxRecentActivities
	}

	all, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}

	succeeded := make([]Job, 0, len(all))
	for _, job := range all {
		if job.Status == Success {
			succeeded = append(succeeded, job)
		}
	}
	sort.SliceStable(succeeded, func(i, j int) bool {
		return succeeded[i].CreatedAt.After(succeeded[j].CreatedAt)
	})
	if len(succeeded) > limit {
		succeeded = succeeded[:limit]
	}
	return succeeded, nil
}

// Wait blocks until every delivery started by Submit has finished or ctx is done
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for deliveries: %w", ctx.Err())
	}
}
