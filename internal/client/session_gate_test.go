package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-board-backend/internal/domain"
)

type scriptedSource struct {
	mu    sync.Mutex
	steps []func() (domain.SessionState, error)
	calls int
}

func (s *scriptedSource) Session(ctx context.Context) (domain.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	return s.steps[i]()
}

func TestSessionGateRetriesUntilKnown(t *testing.T) {
	src := &scriptedSource{steps: []func() (domain.SessionState, error){
		func() (domain.SessionState, error) { return domain.SessionUnknown, errors.New("connection refused") },
		func() (domain.SessionState, error) { return domain.SessionUnknown, nil },
		func() (domain.SessionState, error) { return domain.SessionPresent, nil },
	}}
	g := NewSessionGate(src, time.Millisecond)
	assert.Equal(t, domain.SessionUnknown, g.State())

	state, err := g.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SessionPresent, state)
	assert.Equal(t, 3, src.calls)

	// A known state is not re-fetched.
	require.NoError(t, g.RequireAdmin(context.Background()))
	assert.Equal(t, 3, src.calls)
}

func TestSessionGateNeverTurnsUnknownIntoAbsent(t *testing.T) {
	src := &scriptedSource{steps: []func() (domain.SessionState, error){
		func() (domain.SessionState, error) { return domain.SessionUnknown, errors.New("timeout") },
	}}
	g := NewSessionGate(src, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	state, err := g.Wait(ctx)
	assert.Equal(t, domain.SessionUnknown, state)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorContains(t, err, "timeout")
	assert.NotErrorIs(t, g.RequireAdmin(ctx), ErrNotSignedIn)
}

func TestSessionGateAbsent(t *testing.T) {
	src := &scriptedSource{steps: []func() (domain.SessionState, error){
		func() (domain.SessionState, error) { return domain.SessionAbsent, nil },
		func() (domain.SessionState, error) { return domain.SessionPresent, nil },
	}}
	g := NewSessionGate(src, time.Millisecond)
	assert.ErrorIs(t, g.RequireAdmin(context.Background()), ErrNotSignedIn)

	g.Invalidate()
	assert.Equal(t, domain.SessionUnknown, g.State())
	assert.NoError(t, g.RequireAdmin(context.Background()))
}

func TestClientSessionStates(t *testing.T) {
	var mu sync.Mutex
	state := "unknown"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		current := state
		mu.Unlock()
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"success": true, "message": "Session", "data": map[string]string{"state": current},
		})
	}))
	defer srv.Close()
	c := New(srv.URL, srv.Client())

	s, err := c.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SessionUnknown, s)

	mu.Lock()
	state = "absent"
	mu.Unlock()
	s, err = c.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SessionAbsent, s)

	srv.Close()
	s, err = c.Session(context.Background())
	assert.Error(t, err)
	assert.Equal(t, domain.SessionUnknown, s)
}
