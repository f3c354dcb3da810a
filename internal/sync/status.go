package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"qr-admin-service/internal/models"
)

const (
	// LockKey serializes sync runs. Two concurrent triggers both counting
	// existing tickets and both inserting is exactly the duplicate-ticket
	// defect this lock exists to close.
	LockKey = "qr:sync:lock"
	// StatusKey holds the JSON status snapshot shared across requests.
	StatusKey = "qr:sync:status"
	// DeadlineKey persists the cooldown deadline so a restart mid-delay can
	// resume the countdown instead of silently dropping it.
	DeadlineKey = "qr:sync:delay_deadline"
)

// ErrSyncInProgress is returned when a trigger races a running job.
var ErrSyncInProgress = fmt.Errorf("sync already in progress")

// StatusStore keeps the sync job's cross-request state in Redis. All
// transitions go through Redis primitives (SetNX, WATCH/MULTI), never
// through read-modify-write on a local file.
type StatusStore struct {
	Client *redis.Client
}

func NewStatusStore(client *redis.Client) *StatusStore {
	return &StatusStore{Client: client}
}

// AcquireLock claims the run lock for runID. Returns false when another run
// holds it. The TTL bounds how long a crashed run can wedge the trigger.
func (s *StatusStore) AcquireLock(ctx context.Context, runID string, ttl time.Duration) (bool, error) {
	return s.Client.SetNX(ctx, LockKey, runID, ttl).Result()
}

// ReleaseLock frees the run lock, but only for its holder.
func (s *StatusStore) ReleaseLock(ctx context.Context, runID string) error {
	val, err := s.Client.Get(ctx, LockKey).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val == runID {
		_, err := s.Client.Del(ctx, LockKey).Result()
		return err
	}
	return nil
}

// GetStatus returns the current snapshot. A missing key reads as Ready.
func (s *StatusStore) GetStatus(ctx context.Context) (*models.SyncStatus, error) {
	raw, err := s.Client.Get(ctx, StatusKey).Result()
	if err == redis.Nil {
		return &models.SyncStatus{State: models.SyncStateReady}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync status: %w", err)
	}

	var status models.SyncStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return nil, fmt.Errorf("failed to decode sync status: %w", err)
	}
	return &status, nil
}

// SetStatus overwrites the snapshot. SyncedOrders is clamped so it can never
// exceed TotalOrders, whatever the caller computed.
func (s *StatusStore) SetStatus(ctx context.Context, status models.SyncStatus) error {
	clamp(&status)

	raw, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to encode sync status: %w", err)
	}
	return s.Client.Set(ctx, StatusKey, raw, 0).Err()
}

// UpdateStatus applies fn to the snapshot under optimistic concurrency
// (WATCH/MULTI), retrying on contention. This is the compare-and-set the
// status blackboard needs.
func (s *StatusStore) UpdateStatus(ctx context.Context, fn func(*models.SyncStatus)) (*models.SyncStatus, error) {
	var result *models.SyncStatus

	for attempt := 0; attempt < 20; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * time.Millisecond)
		}
		err := s.Client.Watch(ctx, func(tx *redis.Tx) error {
			status := &models.SyncStatus{State: models.SyncStateReady}

			raw, err := tx.Get(ctx, StatusKey).Result()
			if err != nil && err != redis.Nil {
				return err
			}
			if err == nil {
				if err := json.Unmarshal([]byte(raw), status); err != nil {
					return fmt.Errorf("failed to decode sync status: %w", err)
				}
			}

			fn(status)
			clamp(status)

			encoded, err := json.Marshal(status)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, StatusKey, encoded, 0)
				return nil
			})
			if err == nil {
				result = status
			}
			return err
		}, StatusKey)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	return nil, fmt.Errorf("sync status update kept failing under contention")
}

// SetDelayDeadline persists the cooldown deadline. The key expires shortly
// after the deadline itself so stale deadlines age out on their own.
func (s *StatusStore) SetDelayDeadline(ctx context.Context, deadline time.Time) error {
	ttl := time.Until(deadline) + time.Minute
	return s.Client.Set(ctx, DeadlineKey, strconv.FormatInt(deadline.Unix(), 10), ttl).Err()
}

// GetDelayDeadline reads a pending cooldown deadline, if one survives.
func (s *StatusStore) GetDelayDeadline(ctx context.Context) (time.Time, bool, error) {
	raw, err := s.Client.Get(ctx, DeadlineKey).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse delay deadline: %w", err)
	}
	return time.Unix(unix, 0), true, nil
}

// ClearDelayDeadline drops the deadline once the countdown completes.
func (s *StatusStore) ClearDelayDeadline(ctx context.Context) error {
	return s.Client.Del(ctx, DeadlineKey).Err()
}

func clamp(status *models.SyncStatus) {
	if status.SyncedOrders > status.TotalOrders {
		status.SyncedOrders = status.TotalOrders
	}
	if status.SyncedOrders+status.FailedOrders > status.TotalOrders {
		status.FailedOrders = status.TotalOrders - status.SyncedOrders
	}
	if status.FailedOrders < 0 {
		status.FailedOrders = 0
	}
}
