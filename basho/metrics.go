package basho

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsProcessedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "basho_events_processed_total",
	Help: "The total number of firehose events processed",
}, []string{"event_type", "socket_url"})

var opsProcessedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "basho_ops_processed_total",
	Help: "The total number of repo operations processed",
}, []string{"kind", "collection", "socket_url"})

var recordsProcessedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "basho_records_processed_total",
	Help: "The total number of records decoded",
}, []string{"record_type", "socket_url"})

var haikusDetectedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "basho_haikus_detected_total",
	Help: "The total number of haiku detected in post text",
}, []string{"socket_url"})

var eventProcessingDurationHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "basho_event_processing_duration_seconds",
	Help:    "The amount of time it takes to process a firehose event",
	Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
}, []string{"socket_url"})

var lastSeqGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "basho_last_seq",
	Help: "The last sequence number processed",
}, []string{"socket_url"})

var lastSeqProcessedAtGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "basho_last_seq_processed_at",
	Help: "The timestamp of the last sequence number processed",
}, []string{"socket_url"})
