package client

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollerFirstTickIsImmediate(t *testing.T) {
	updates := make(chan []Machine, 1)
	fetch := func(ctx context.Context) ([]Machine, error) {
		return []Machine{{Name: "XRD-001"}}, nil
	}

	p := NewPoller(fetch, time.Hour, func(m []Machine) { updates <- m }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	select {
	case machines := <-updates:
		assert.Len(t, machines, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate first refresh")
	}
}

func TestPollerSkipsOverlappingTicks(t *testing.T) {
	var started int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]Machine, error) {
		atomic.AddInt32(&started, 1)
		<-release
		return nil, nil
	}

	var mu sync.Mutex
	updated := 0
	p := NewPoller(fetch, 10*time.Millisecond, func([]Machine) {
		mu.Lock()
		updated++
		mu.Unlock()
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)

	// Many intervals elapse while the first fetch blocks; none may start a
	// second fetch.
	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&started))

	close(release)
	time.Sleep(50 * time.Millisecond)
	assert.Greater(t, atomic.LoadInt32(&started), int32(1), "polling resumes once the fetch returns")

	cancel()
}

func TestPollerSurfacesErrors(t *testing.T) {
	errs := make(chan error, 1)
	fetch := func(ctx context.Context) ([]Machine, error) {
		return nil, assert.AnError
	}

	p := NewPoller(fetch, time.Hour, func([]Machine) {
		t.Error("onUpdate must not fire for a failed fetch")
	}, func(err error) { errs <- err })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, assert.AnError)
	case <-time.After(2 * time.Second):
		t.Fatal("expected the fetch error to reach the callback")
	}
}

func TestPollerStopsOnCancel(t *testing.T) {
	var ticks int32
	fetch := func(ctx context.Context) ([]Machine, error) {
		atomic.AddInt32(&ticks, 1)
		return nil, nil
	}

	p := NewPoller(fetch, 10*time.Millisecond, func([]Machine) {}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	settled := atomic.LoadInt32(&ticks)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, atomic.LoadInt32(&ticks), "no ticks after cancel")
}

func TestPollerDefaultInterval(t *testing.T) {
	p := NewPoller(func(context.Context) ([]Machine, error) { return nil, nil }, 0, func([]Machine) {}, nil)
	assert.Equal(t, DefaultPollInterval, p.interval)
}
