package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/models"
	syncjob "qr-admin-service/internal/sync"
)

type Handler struct {
	Job    *syncjob.Job
	Status *syncjob.StatusStore
	Logger *logger.Logger

	// JobCtx outlives individual requests, so closing the trigger request
	// does not cancel a running sync. Server shutdown cancels it.
	JobCtx context.Context
}

func NewHandler(job *syncjob.Job, status *syncjob.StatusStore, log *logger.Logger, jobCtx context.Context) *Handler {
	return &Handler{Job: job, Status: status, Logger: log, JobCtx: jobCtx}
}

// TriggerSync starts a sync run in the background. A second trigger while
// one is running (or cooling down) reports 409.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("API", "TriggerSync: sync requested")

	status, err := h.Status.GetStatus(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("TriggerSync: failed to read status: %v", err))
		http.Error(w, "Failed to read sync status: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if status.SyncInProgress {
		http.Error(w, "Sync already in progress", http.StatusConflict)
		return
	}

	go func() {
		if err := h.Job.Run(h.JobCtx); err != nil {
			if errors.Is(err, syncjob.ErrSyncInProgress) {
				h.Logger.Warn("SYNC", "Trigger lost the run lock race")
				return
			}
			h.Logger.Error("SYNC", fmt.Sprintf("Sync run failed: %v", err))
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"message": "sync started"})
}

func (h *Handler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Status.GetStatus(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSyncStatus: %v", err))
		http.Error(w, "Failed to read sync status: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSyncStatus: failed to encode response: %v", err))
	}
}

// UpdateSyncStatus lets a superadmin adjust the cooldown or force the state
// back to ready after an aborted run.
// Expected POST body: {"delay_in_sec": 300} and/or {"reset": true}
func (h *Handler) UpdateSyncStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DelayInSec *int `json:"delay_in_sec"`
		Reset      bool `json:"reset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if body.DelayInSec != nil && *body.DelayInSec < 0 {
		http.Error(w, "delay_in_sec must not be negative", http.StatusBadRequest)
		return
	}

	updated, err := h.Status.UpdateStatus(r.Context(), func(s *models.SyncStatus) {
		if body.DelayInSec != nil {
			s.DelayInSec = *body.DelayInSec
		}
		if body.Reset {
			s.State = models.SyncStateReady
			s.SyncInProgress = false
			s.TotalOrders = 0
			s.SyncedOrders = 0
			s.FailedOrders = 0
			s.SyncedTickets = 0
		}
	})
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateSyncStatus: %v", err))
		http.Error(w, "Failed to update sync status: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if body.Reset {
		if updated.RunID != "" {
			if err := h.Status.ReleaseLock(r.Context(), updated.RunID); err != nil {
				h.Logger.Warn("SYNC", fmt.Sprintf("Failed to release lock on reset: %v", err))
			}
		}
		if err := h.Status.ClearDelayDeadline(r.Context()); err != nil {
			h.Logger.Warn("SYNC", fmt.Sprintf("Failed to clear deadline on reset: %v", err))
		}
		h.Logger.Info("SYNC", "Sync status reset by superadmin")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateSyncStatus: failed to encode response: %v", err))
	}
}
