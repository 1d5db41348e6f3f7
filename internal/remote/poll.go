package remote

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
)

// WatchIdeas polls the idea list and delivers a snapshot whenever it changes.
// The first poll runs before WatchIdeas returns; its failure is returned.
// Later failures are reported once per outage and polling continues.
// Polling ends when ctx is done or the returned stop function is called.
// stop waits for the poll goroutine to exit unless a callback is running,
// so it may be called from inside one.
func (c *Client) WatchIdeas(ctx context.Context, userID string, onSnapshot SnapshotFunc, onError ErrorFunc) (func(), error) {
	ideas, err := c.ListIdeas(ctx, userID)
	if err != nil {
		return nil, err
	}

	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	last := fingerprint(ideas)
	if onSnapshot != nil {
		onSnapshot(ideas)
	}

	var delivering atomic.Bool
	deliver := func(fn func()) {
		delivering.Store(true)
		defer delivering.Store(false)
		fn()
	}

	go func() {
		defer close(done)
		c.pollLoop(pollCtx, userID, last, deliver, onSnapshot, onError)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			if delivering.Load() {
				return
			}
			<-done
		})
	}, nil
}

func (c *Client) pollLoop(ctx context.Context, userID, last string, deliver func(func()), onSnapshot SnapshotFunc, onError ErrorFunc) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		ideas, err := c.ListIdeas(ctx, userID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if !failing {
				failing = true
				c.log.Warn("Idea poll failed", logger.F("error", err))
				if onError != nil {
					deliver(func() { onError(err) })
				}
			}
			continue
		}
		if failing {
			failing = false
			c.log.Info("Idea poll recovered")
		}

		fp := fingerprint(ideas)
		if fp == last {
			continue
		}
		last = fp
		if onSnapshot != nil {
			deliver(func() { onSnapshot(ideas) })
		}
	}
}

// fingerprint is an order-independent digest of an idea set
func fingerprint(ideas []model.Idea) string {
	sorted := make([]model.Idea, len(ideas))
	copy(sorted, ideas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	data, _ := json.Marshal(sorted)
	return string(data)
}
