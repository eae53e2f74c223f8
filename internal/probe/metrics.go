package probe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roundTripsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "udprtt_round_trips_total",
		Help: "Completed client round trips",
	})
	roundTripDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "udprtt_round_trip_microseconds",
		Help:    "Distribution of client round-trip times in microseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 50000},
	})
	echoedDatagramsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "udprtt_echoed_datagrams_total",
		Help: "Datagrams reflected by the server",
	})
	echoedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "udprtt_echoed_bytes_total",
		Help: "Payload bytes reflected by the server",
	})
	transportErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "udprtt_transport_errors_total",
		Help: "Fatal send or receive failures",
	}, []string{"role", "op"})
)
