package firehose

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messagesFromStreamCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "basho_stream_messages_total",
	Help: "Total number of messages received from the subscription socket",
})

var bytesFromStreamCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "basho_stream_bytes_total",
	Help: "Total bytes received from the subscription socket",
})

var nonBinaryMessagesCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "basho_stream_non_binary_messages_total",
	Help: "Messages skipped because they were not binary frames",
})
