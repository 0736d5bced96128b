package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trophy_node"

var (
	Presses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "button_presses_total",
		Help:      "Debounced button presses.",
	}, []string{"button"})

	Sent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "codes_sent_total",
		Help:      "Button codes written to the server.",
	}, []string{"button"})

	Dropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "codes_dropped_total",
		Help:      "Button codes that could not be sent.",
	}, []string{"button", "reason"})

	BytesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "received_bytes_total",
		Help:      "Bytes received from the server.",
	})

	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_reconnects_total",
		Help:      "Sessions torn down after a receive failure.",
	})

	Connected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_connected",
		Help:      "1 while a server connection is established.",
	})

	LinkReady = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "link_ready",
		Help:      "1 while both addresses are acquired.",
	})
)
