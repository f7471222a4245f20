package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capibridge_webhooks_received_total",
		Help: "Inbound webhooks, labelled by event type and result (success, ignored, invalid, error).",
	}, []string{"event_type", "result"})

	EventsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capibridge_events_submitted_total",
		Help: "Outbound Conversions API submissions, labelled by event name and outcome.",
	}, []string{"event_name", "outcome"})

	SinkLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "capibridge_sink_request_duration_ms",
		Help:    "Conversions API request latency in milliseconds.",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"event_name"})

	FanOutSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "capibridge_fanout_events",
		Help:    "Number of outbound events produced per mapped webhook.",
		Buckets: []float64{0, 1, 2, 3, 4},
	})

	EventTimeFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capibridge_event_time_fallback_total",
		Help: "Webhooks whose time field was absent or unreadable and fell back to the wall clock.",
	})

	DispatchQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capibridge_dispatch_queued_total",
		Help: "Fan-outs handed to the async dispatch pool.",
	})

	DispatchInline = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capibridge_dispatch_inline_total",
		Help: "Async fan-outs dispatched inline because the pool queue was full.",
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "capibridge_queue_utilization_ratio",
		Help: "Current async dispatch queue utilization (0–1).",
	})
)
