package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrdersProcessed counts orders accepted by the accounting engine, by side.
var OrdersProcessed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "limit_service_orders_processed_total",
		Help: "Total number of orders accepted by the accounting engine",
	},
	[]string{"side"},
)

// OrdersRejected counts orders dropped before or during accounting, by reason.
var OrdersRejected = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "limit_service_orders_rejected_total",
		Help: "Total number of orders rejected or dropped by the accounting engine",
	},
	[]string{"reason"},
)

// LimitBreaches counts breach events emitted, by breach type.
var LimitBreaches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "limit_service_limit_breaches_total",
		Help: "Total number of limit breach events emitted",
	},
	[]string{"breach_type"},
)

// OrderLatency records latency distribution for order processing
var OrderLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "limit_service_order_processing_latency_seconds",
		Help:    "Latency in seconds to process individual orders",
		Buckets: prometheus.DefBuckets,
	},
)

// QueueDepth tracks the number of orders waiting in the processor queue.
var QueueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "limit_service_queue_depth",
		Help: "Number of orders currently waiting in the processor queue",
	},
)

// EventsDropped counts outbound events dropped because the publisher buffer was full.
var EventsDropped = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "limit_service_events_dropped_total",
		Help: "Total number of outbound events dropped by the publisher",
	},
)

// InvalidMessages counts inbound payloads that failed validation and were journaled.
var InvalidMessages = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "limit_service_invalid_messages_total",
		Help: "Total number of inbound order payloads that failed validation",
	},
)

func init() {
	prometheus.MustRegister(OrdersProcessed, OrdersRejected, LimitBreaches, OrderLatency)
	prometheus.MustRegister(QueueDepth, EventsDropped, InvalidMessages)
}
