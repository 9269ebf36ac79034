// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenelink_requests_total",
		Help: "Category requests answered, by category",
	}, []string{"category"})

	ReplyBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenelink_reply_bytes_total",
		Help: "Bytes sent in category replies, by category",
	}, []string{"category"})

	ProtocolViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenelink_protocol_violations_total",
		Help: "Requests rejected as protocol violations",
	})

	ReplyCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenelink_reply_cache_total",
		Help: "Reply cache lookups, by result",
	}, []string{"result"})

	Rebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenelink_rebuilds_total",
		Help: "Distribution context rebuilds",
	})

	CategoryBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scenelink_category_bytes",
		Help: "Serialized size of each category for the loaded scene",
	}, []string{"category"})

	Updates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenelink_updates_total",
		Help: "Messages received on the update channel, by message type",
	}, []string{"type"})

	RecordsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenelink_update_records_applied_total",
		Help: "Parameter records written to live nodes, by parameter",
	}, []string{"parameter"})

	RecordsIgnored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenelink_update_records_ignored_total",
		Help: "Parameter records with no valid target on the addressed node",
	})

	MalformedUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenelink_malformed_updates_total",
		Help: "Update messages dropped because they failed to decode or validate",
	})

	UpdatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenelink_updates_dropped_total",
		Help: "Update messages discarded because the backlog was full",
	})
)
