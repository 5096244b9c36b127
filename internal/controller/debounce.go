package controller

import (
	"context"
	"time"
)

// drain swallows events until none arrives for a full quiet window. Every
// event or watch error restarts the window. It reports whether the source
// disconnected while draining.
func (c *Controller) drain(ctx context.Context) bool {
	timer := time.NewTimer(c.debounce)
	defer timer.Stop()

	coalesced := 0
	defer func() {
		c.stats.AddEventsCoalesced(coalesced)
	}()
	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-c.events:
			if !ok {
				return true
			}
			coalesced++
		case err := <-c.errors:
			c.reportWatchError(err)
		case <-timer.C:
			return false
		}
		timer.Reset(c.debounce)
	}
}
