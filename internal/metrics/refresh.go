package metrics

import (
	"context"
	"log"
	"time"
)

// Counter reports the current post and user totals.
type Counter interface {
	Totals(ctx context.Context) (posts, users int, err error)
}

// RefreshGauges updates PostsTotal and UsersTotal from c immediately and then
// every interval until ctx is cancelled.
func RefreshGauges(ctx context.Context, c Counter, interval time.Duration) {
	refresh := func() {
		posts, users, err := c.Totals(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("metrics: refresh gauges: %v", err)
			}
			return
		}
		PostsTotal.Set(float64(posts))
		UsersTotal.Set(float64(users))
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
