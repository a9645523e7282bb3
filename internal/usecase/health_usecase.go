package usecase

import (
	"context"
	"sync"
	"time"

	"job-board-backend/internal/domain"

	"golang.org/x/sync/errgroup"
)

// Pinger is satisfied by the database pool and the redis health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type healthUsecase struct {
	deps    map[string]Pinger
	timeout time.Duration
}

// NewHealthUsecase checks each named dependency; nil entries are reported as
// "disabled".
func NewHealthUsecase(deps map[string]Pinger) domain.HealthUsecase {
	return &healthUsecase{deps: deps, timeout: 2 * time.Second}
}

// Check pings every dependency concurrently. A slow dependency costs at most
// the timeout, not the sum of all of them.
func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		healthy = true
		status  = map[string]string{"status": "ok"}
	)
	for name, dep := range u.deps {
		if dep == nil {
			mu.Lock()
			status[name] = "disabled"
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			state := "up"
			if err := dep.Ping(ctx); err != nil {
				state = "down"
			}
			mu.Lock()
			defer mu.Unlock()
			status[name] = state
			if state == "down" {
				healthy = false
			}
			return nil
		})
	}
	_ = g.Wait()

	if !healthy {
		status["status"] = "degraded"
	}
	return status, healthy
}
