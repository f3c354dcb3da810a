package sync

import (
	"context"
	"fmt"
	"time"

	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
	"qr-admin-service/internal/sse"
)

// Countdown drives the Delay → Complete transition. The deadline lives in
// Redis, so the countdown can be resumed after a restart instead of leaving
// the trigger button locked forever.
type Countdown struct {
	Status      *StatusStore
	Broadcaster *sse.Broadcaster
	Logger      *logger.Logger
}

// Run ticks once a second until the deadline, broadcasting the remaining
// time, then completes the run and releases the lock.
func (c *Countdown) Run(ctx context.Context, deadline time.Time, runID string) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.complete(ctx, runID)
			return
		}

		c.Broadcaster.Emit(models.EventDelayTimer, models.DelayTimerPayload{
			RemainingSec: int(remaining.Seconds()),
		})

		select {
		case <-ticker.C:
		case <-ctx.Done():
			// The deadline stays in Redis; Resume picks it up on restart.
			c.Logger.Warn("SYNC", "Countdown interrupted, deadline persisted for resume")
			return
		}
	}
}

// Resume restarts a countdown whose deadline survived a restart. Called once
// from main before the server starts serving triggers.
func (c *Countdown) Resume(ctx context.Context) error {
	deadline, found, err := c.Status.GetDelayDeadline(ctx)
	if err != nil {
		return fmt.Errorf("failed to read delay deadline: %w", err)
	}
	if !found {
		return nil
	}

	status, err := c.Status.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sync status: %w", err)
	}

	if time.Now().After(deadline) {
		// The cooldown elapsed while the process was down.
		c.complete(ctx, status.RunID)
		return nil
	}

	c.Logger.Info("SYNC", fmt.Sprintf("Resuming sync cooldown, %ds remaining", int(time.Until(deadline).Seconds())))
	go c.Run(ctx, deadline, status.RunID)
	return nil
}

func (c *Countdown) complete(ctx context.Context, runID string) {
	completed, err := c.Status.UpdateStatus(ctx, func(s *models.SyncStatus) {
		s.State = models.SyncStateComplete
		s.SyncInProgress = false
	})
	if err != nil {
		c.Logger.Error("SYNC", fmt.Sprintf("Failed to record completion: %v", err))
		return
	}

	if err := c.Status.ClearDelayDeadline(ctx); err != nil {
		c.Logger.Warn("SYNC", fmt.Sprintf("Failed to clear delay deadline: %v", err))
	}
	if err := c.Status.ReleaseLock(ctx, runID); err != nil {
		c.Logger.Error("SYNC", fmt.Sprintf("Failed to release sync lock: %v", err))
	}

	c.Broadcaster.Emit(models.EventSyncComplete, completed)
	c.Logger.Info("SYNC", "Sync cooldown finished, trigger re-enabled")
}
