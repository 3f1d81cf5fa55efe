package client

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is the dashboard refresh cadence.
const DefaultPollInterval = 30 * time.Second

// FetchFunc retrieves the current fleet snapshot.
type FetchFunc func(ctx context.Context) ([]Machine, error)

// Poller refreshes the fleet on a fixed interval. A tick that arrives while
// the previous fetch is still in flight is skipped, never queued, so a slow
// server cannot pile up concurrent requests.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	onUpdate func([]Machine)
	onError  func(error)

	inFlight int32
}

// NewPoller creates a poller. onError may be nil, in which case fetch
// failures are only logged.
func NewPoller(fetch FetchFunc, interval time.Duration, onUpdate func([]Machine), onError func(error)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if onError == nil {
		onError = func(err error) {
			logrus.Warnf("Fleet refresh failed: %v", err)
		}
	}
	return &Poller{
		fetch:    fetch,
		interval: interval,
		onUpdate: onUpdate,
		onError:  onError,
	}
}

// Run polls until ctx is cancelled. The first fetch happens immediately,
// subsequent ones on the interval.
func (p *Poller) Run(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&p.inFlight, 0, 1) {
		logrus.Debug("Previous fleet refresh still in flight, skipping tick")
		return
	}

	go func() {
		defer atomic.StoreInt32(&p.inFlight, 0)

		machines, err := p.fetch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.onError(err)
			}
			return
		}
		p.onUpdate(machines)
	}()
}
