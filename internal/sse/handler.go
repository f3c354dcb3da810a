package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"qr-admin-service/internal/logger"
	"qr-admin-service/internal/metrics"
	"qr-admin-service/internal/models"
)

// HeartbeatInterval keeps intermediate proxies from closing idle streams.
const HeartbeatInterval = 25 * time.Second

// Handler serves the SSE progress stream consumed by admin dashboards.
type Handler struct {
	Broadcaster *Broadcaster
	Logger      *logger.Logger
}

func NewHandler(broadcaster *Broadcaster, log *logger.Logger) *Handler {
	return &Handler{Broadcaster: broadcaster, Logger: log}
}

func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h.setupSSEHeaders(w)

	ctx := r.Context()
	eventChan := h.Broadcaster.Subscribe(ctx)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	h.Logger.Info("SSE", "Client connected to sync progress stream")
	metrics.SSEClients.Inc()
	defer metrics.SSEClients.Dec()

	heartbeat := time.NewTicker(HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				h.Logger.Debug("SSE", "Client channel closed")
				return
			}

			jsonData, err := json.Marshal(event.Payload)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize %s event: %v", event.Name, err))
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, jsonData)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprintf(w, "event: %s\ndata: {}\n\n", models.EventHeartbeat)
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", "Client disconnected from sync progress stream")
			return
		}
	}
}

func (h *Handler) setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
