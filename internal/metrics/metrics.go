package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrapp_sync_runs_total",
		Help: "Number of sync job runs started.",
	})

	SyncOrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrapp_sync_orders_total",
		Help: "Orders processed by the sync job, by result.",
	}, []string{"result"})

	SyncTicketsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrapp_sync_tickets_inserted_total",
		Help: "Ticket rows inserted by the sync job.",
	})

	SyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "qrapp_sync_duration_seconds",
		Help:    "Wall time of complete sync job runs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	GHLRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrapp_ghl_requests_total",
		Help: "Requests issued to the GHL API, by outcome.",
	}, []string{"outcome"})

	SSEClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qrapp_sse_clients",
		Help: "Currently connected SSE progress subscribers.",
	})
)
