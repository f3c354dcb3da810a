package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/metrics"
	"qr-admin-service/internal/models"
	"qr-admin-service/internal/sse"
	"qr-admin-service/internal/tickets/qr"
)

// GHLClient is the slice of the commerce API the job needs.
type GHLClient interface {
	GetOrder(ctx context.Context, orderID string) (*models.GHLOrder, error)
}

type OrderStore interface {
	UpsertOrder(ctx context.Context, order models.Order) error
}

type TicketStore interface {
	CountByOrderAndType(ctx context.Context, orderID, ticketType string) (int, error)
	InsertTicket(ctx context.Context, ticket models.Ticket) error
}

// Publisher emits sync lifecycle events; nil disables publishing.
type Publisher interface {
	PublishOrderSynced(topic string, order models.Order) error
}

// Job reconciles external orders and tickets into the local store. One run:
// for every valid order ID, fetch detail, derive per-type quantities from
// the line items, upsert the order row, and top ticket rows up to the target
// quantity. Per-order and per-type failures are logged, counted, and
// skipped; the run itself always finishes.
type Job struct {
	GHL         GHLClient
	Orders      OrderStore
	Tickets     TicketStore
	Status      *StatusStore
	Broadcaster *sse.Broadcaster
	QR          *qr.QRGenerator
	Kafka       Publisher
	Logger      *logger.Logger

	OrderListPath    string
	DelaySeconds     int
	LockTTL          time.Duration
	OrderSyncedTopic string
}

// Run executes one sync run end to end, cooldown included. It returns
// ErrSyncInProgress when another run holds the lock.
func (j *Job) Run(ctx context.Context) error {
	runID := uuid.NewString()

	ok, err := j.Status.AcquireLock(ctx, runID, j.LockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return ErrSyncInProgress
	}

	orderIDs, err := LoadOrderList(j.OrderListPath)
	if err != nil {
		_ = j.Status.ReleaseLock(ctx, runID)
		return fmt.Errorf("failed to load order list: %w", err)
	}

	metrics.SyncRunsTotal.Inc()
	startTime := time.Now()

	status := models.SyncStatus{
		State:          models.SyncStateSyncing,
		RunID:          runID,
		SyncInProgress: true,
		StartTime:      startTime,
		TotalOrders:    len(orderIDs),
		DelayInSec:     j.DelaySeconds,
	}
	if err := j.Status.SetStatus(ctx, status); err != nil {
		_ = j.Status.ReleaseLock(ctx, runID)
		return fmt.Errorf("failed to initialize sync status: %w", err)
	}

	j.Broadcaster.Emit(models.EventStartTimer, models.DelayTimerPayload{RemainingSec: 0})
	j.Broadcaster.Emit(models.EventSyncStatus, status)
	j.Logger.Info("SYNC", fmt.Sprintf("Sync run %s started for %d orders", runID, len(orderIDs)))

	synced, failed, ticketCount := 0, 0, 0

	for _, orderID := range orderIDs {
		if ctx.Err() != nil {
			j.Logger.Warn("SYNC", fmt.Sprintf("Sync run %s cancelled after %d/%d orders", runID, synced, len(orderIDs)))
			break
		}

		inserted, err := j.syncOrder(ctx, orderID)
		if err != nil {
			// Log and skip; the order stays unsynced until the next run.
			failed++
			metrics.SyncOrdersTotal.WithLabelValues("failed").Inc()
			j.Logger.Error("SYNC", fmt.Sprintf("Order %s failed: %v", orderID, err))
			j.broadcastProgress(ctx, orderID, synced, failed, ticketCount, len(orderIDs), true)
			continue
		}

		synced++
		ticketCount += inserted
		metrics.SyncOrdersTotal.WithLabelValues("synced").Inc()
		j.Logger.LogSync("ORDER_SYNCED", orderID, fmt.Sprintf("%d tickets inserted", inserted))
		j.broadcastProgress(ctx, orderID, synced, failed, ticketCount, len(orderIDs), false)
	}

	metrics.SyncDuration.Observe(time.Since(startTime).Seconds())
	j.Logger.Info("SYNC", fmt.Sprintf("Sync run %s finished: %d synced, %d failed, %d tickets inserted",
		runID, synced, failed, ticketCount))

	// Enter the cooldown. The deadline is persisted so a restart resumes it.
	deadline := time.Now().Add(time.Duration(j.DelaySeconds) * time.Second)
	if err := j.Status.SetDelayDeadline(ctx, deadline); err != nil {
		j.Logger.Error("SYNC", fmt.Sprintf("Failed to persist delay deadline: %v", err))
	}

	delayStatus, err := j.Status.UpdateStatus(ctx, func(s *models.SyncStatus) {
		s.State = models.SyncStateDelay
		s.EndTime = time.Now()
		s.SyncedOrders = synced
		s.FailedOrders = failed
		s.SyncedTickets = ticketCount
	})
	if err != nil {
		j.Logger.Error("SYNC", fmt.Sprintf("Failed to record delay state: %v", err))
	} else {
		j.Broadcaster.Emit(models.EventSyncStatus, delayStatus)
	}

	countdown := &Countdown{
		Status:      j.Status,
		Broadcaster: j.Broadcaster,
		Logger:      j.Logger,
	}
	countdown.Run(ctx, deadline, runID)

	return nil
}

// SyncOne reconciles a single order outside a full run, used by the inbound
// webhook. It does not touch the run lock or the status snapshot.
func (j *Job) SyncOne(ctx context.Context, orderID string) (int, error) {
	return j.syncOrder(ctx, orderID)
}

// syncOrder reconciles one order and returns how many ticket rows it
// inserted.
func (j *Job) syncOrder(ctx context.Context, orderID string) (int, error) {
	ghlOrder, err := j.GHL.GetOrder(ctx, orderID)
	if err != nil {
		metrics.GHLRequestsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("fetch failed: %w", err)
	}
	metrics.GHLRequestsTotal.WithLabelValues("ok").Inc()

	quantities := ghlOrder.TicketQuantities()

	order := models.Order{
		OrderID:          orderID,
		PaymentStatus:    ghlOrder.PaymentStatus,
		ContactID:        ghlOrder.Contact.ID,
		ContactName:      ghlOrder.Contact.Name,
		ContactEmail:     ghlOrder.Contact.Email,
		TicketQuantities: quantities,
		TotalPaid:        ghlOrder.Amount,
		Currency:         ghlOrder.Currency,
		SyncedAt:         time.Now(),
		CreatedAt:        time.Now(),
	}
	if len(ghlOrder.Items) > 0 {
		order.EventID = ghlOrder.Items[0].Product.ID
		order.EventName = ghlOrder.Items[0].Product.Name
	}

	if err := j.Orders.UpsertOrder(ctx, order); err != nil {
		return 0, fmt.Errorf("upsert failed: %w", err)
	}

	inserted := 0
	for ticketType, targetQty := range quantities {
		n, err := j.topUpTickets(ctx, orderID, ticketType, targetQty)
		if err != nil {
			// Skip this type for this order; the next run tops it up.
			j.Logger.Error("SYNC", fmt.Sprintf("Order %s type %q skipped: %v", orderID, ticketType, err))
			continue
		}
		inserted += n

		j.Broadcaster.Emit(models.EventSyncTicketProgress, models.TicketProgressPayload{
			OrderID:       orderID,
			TicketType:    ticketType,
			Inserted:      n,
			TargetQty:     targetQty,
			SyncedTickets: inserted,
		})
	}

	if j.Kafka != nil {
		if err := j.Kafka.PublishOrderSynced(j.OrderSyncedTopic, order); err != nil {
			j.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish order.synced for %s: %v", orderID, err))
		}
	}

	return inserted, nil
}

// topUpTickets inserts the missing delta of (order, type) tickets up to
// targetQty. Excess rows are never deleted; quantity decreases are not
// handled here.
func (j *Job) topUpTickets(ctx context.Context, orderID, ticketType string, targetQty int) (int, error) {
	existing, err := j.Tickets.CountByOrderAndType(ctx, orderID, ticketType)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}

	inserted := 0
	for i := existing; i < targetQty; i++ {
		ticket := models.Ticket{
			TicketID:   uuid.NewString(),
			OrderID:    orderID,
			TicketType: ticketType,
			Status:     models.TicketStatusLive,
			IssuedAt:   time.Now(),
		}

		if j.QR != nil {
			qrBytes, err := j.QR.GenerateEncryptedQR(models.QRPayload{
				TicketID:   ticket.TicketID,
				OrderID:    orderID,
				TicketType: ticketType,
			})
			if err != nil {
				return inserted, fmt.Errorf("qr generation failed: %w", err)
			}
			ticket.QRCode = qrBytes
		}

		if err := j.Tickets.InsertTicket(ctx, ticket); err != nil {
			return inserted, fmt.Errorf("insert failed: %w", err)
		}
		inserted++
		metrics.SyncTicketsInserted.Inc()
	}

	return inserted, nil
}

func (j *Job) broadcastProgress(ctx context.Context, orderID string, synced, failed, ticketCount, total int, orderFailed bool) {
	updated, err := j.Status.UpdateStatus(ctx, func(s *models.SyncStatus) {
		s.SyncedOrders = synced
		s.FailedOrders = failed
		s.SyncedTickets = ticketCount
	})
	if err != nil {
		j.Logger.Error("SYNC", fmt.Sprintf("Failed to update sync status: %v", err))
		return
	}

	j.Broadcaster.Emit(models.EventSyncProgress, models.SyncProgressPayload{
		OrderID:      orderID,
		SyncedOrders: updated.SyncedOrders,
		TotalOrders:  total,
		Failed:       orderFailed,
	})
}

// LoadOrderList reads the valid order ID list. Both a bare JSON array and
// the `{"order_ids": [...]}` wrapper are accepted.
func LoadOrderList(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		return ids, nil
	}

	var wrapped struct {
		OrderIDs []string `json:"order_ids"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("unrecognized order list format: %w", err)
	}
	return wrapped.OrderIDs, nil
}
