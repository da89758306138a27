package engine

import (
	"context"
	"time"

	"github.com/dm/voltie-go/internal/client"
	"github.com/dm/voltie-go/internal/model"
)

// DefaultPace is the pause between the /status and /power requests of one
// cycle. The charger's embedded server drops connections when hit back to back.
const DefaultPace = 200 * time.Millisecond

// FetchSnapshot requests /status, waits pace, then requests /power. The calls
// are strictly sequential: if /status fails, /power is never requested. The
// returned Snapshot carries both bodies unmodified.
func FetchSnapshot(ctx context.Context, c client.ChargerClient, pace time.Duration) (*model.Snapshot, error) {
	status, err := c.GetStatus(ctx)
	if err != nil {
		return nil, err
	}

	if err := sleepCtx(ctx, pace); err != nil {
		return nil, err
	}

	power, err := c.GetPower(ctx)
	if err != nil {
		return nil, err
	}

	return &model.Snapshot{
		Status:    status,
		Power:     power,
		FetchedAt: time.Now(),
	}, nil
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
