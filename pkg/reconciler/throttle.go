package reconciler

import (
	"context"
	"time"
)

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Throttle paces writes to stay under the row store's rate limit.
type Throttle struct {
	RowDelay   time.Duration
	BatchDelay time.Duration
	BatchSize  int
	Sleep      Sleeper
}

// AfterRow pauses after a successful row write.
func (t *Throttle) AfterRow(ctx context.Context) error {
	return t.sleep(ctx, t.RowDelay)
}

// AfterOrder pauses once every BatchSize processed orders.
// No pause follows the last order of a pass.
func (t *Throttle) AfterOrder(ctx context.Context, processed, total int) error {
	if t.BatchSize <= 0 || processed%t.BatchSize != 0 || processed >= total {
		return nil
	}
	return t.sleep(ctx, t.BatchDelay)
}

func (t *Throttle) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if t.Sleep == nil {
		return Sleep(ctx, d)
	}
	return t.Sleep(ctx, d)
}
