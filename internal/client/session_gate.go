package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"job-board-backend/internal/domain"
)

var ErrNotSignedIn = errors.New("admin session required")

// SessionSource reports the server's view of the current session.
type SessionSource interface {
	Session(ctx context.Context) (domain.SessionState, error)
}

// SessionGate holds callers back until the session state is known. It
// starts UNKNOWN and only leaves that state on a definite answer from the
// source; errors keep it UNKNOWN and are retried.
type SessionGate struct {
	src      SessionSource
	interval time.Duration

	mu    sync.Mutex
	state domain.SessionState
}

func NewSessionGate(src SessionSource, retryInterval time.Duration) *SessionGate {
	if retryInterval <= 0 {
		retryInterval = 500 * time.Millisecond
	}
	return &SessionGate{src: src, interval: retryInterval, state: domain.SessionUnknown}
}

func (g *SessionGate) State() domain.SessionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Wait blocks until the state is ABSENT or PRESENT, or ctx is done. The last
// transport error is returned together with ctx's error.
func (g *SessionGate) Wait(ctx context.Context) (domain.SessionState, error) {
	if s := g.State(); s != domain.SessionUnknown {
		return s, nil
	}

	var lastErr error
	for {
		state, err := g.src.Session(ctx)
		if err == nil && state != domain.SessionUnknown {
			g.set(state)
			return state, nil
		}
		if err != nil {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return domain.SessionUnknown, errors.Join(ctx.Err(), lastErr)
		case <-time.After(g.interval):
		}
	}
}

// RequireAdmin waits for a definite state and fails with ErrNotSignedIn
// when there is no session.
func (g *SessionGate) RequireAdmin(ctx context.Context) error {
	state, err := g.Wait(ctx)
	if err != nil {
		return err
	}
	if state != domain.SessionPresent {
		return ErrNotSignedIn
	}
	return nil
}

// Invalidate forgets the known state, e.g. after sign-in or sign-out.
func (g *SessionGate) Invalidate() {
	g.set(domain.SessionUnknown)
}

func (g *SessionGate) set(s domain.SessionState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
}
