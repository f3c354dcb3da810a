package models

import "time"

// Sync job states. Transitions: Ready → Syncing → Delay → Complete → Ready.
const (
	SyncStateReady    = "ready"
	SyncStateSyncing  = "syncing"
	SyncStateDelay    = "delay"
	SyncStateComplete = "complete"
)

// SyncStatus is the cross-request status snapshot kept in Redis. Invariant:
// SyncedOrders+FailedOrders never exceeds TotalOrders.
type SyncStatus struct {
	State          string    `json:"status"`
	RunID          string    `json:"runId,omitempty"`
	SyncInProgress bool      `json:"syncInProgress"`
	StartTime      time.Time `json:"startTime,omitempty"`
	EndTime        time.Time `json:"endTime,omitempty"`
	TotalOrders    int       `json:"totalOrders"`
	SyncedOrders   int       `json:"syncedOrders"`
	FailedOrders   int       `json:"failedOrders"`
	SyncedTickets  int       `json:"syncedTickets"`
	DelayInSec     int       `json:"delay_in_sec"`
}

// Names of the events carried over the SSE progress channel.
const (
	EventHeartbeat          = "heartbeat"
	EventSyncStatus         = "sync_status"
	EventSyncProgress       = "sync_progress"
	EventSyncTicketProgress = "sync_ticket_progress"
	EventSyncComplete       = "sync_complete"
	EventDelayTimer         = "delay_timer"
	EventStartTimer         = "start_timer"
)

// SyncEvent is one broadcast frame on the progress channel.
type SyncEvent struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type SyncProgressPayload struct {
	OrderID      string `json:"order_id"`
	SyncedOrders int    `json:"syncedOrders"`
	TotalOrders  int    `json:"totalOrders"`
	Failed       bool   `json:"failed,omitempty"`
}

type TicketProgressPayload struct {
	OrderID       string `json:"order_id"`
	TicketType    string `json:"ticket_type"`
	Inserted      int    `json:"inserted"`
	TargetQty     int    `json:"target_qty"`
	SyncedTickets int    `json:"syncedTickets"`
}

type DelayTimerPayload struct {
	RemainingSec int `json:"remaining_sec"`
}
