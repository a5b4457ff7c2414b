package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmap_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	GeocodeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmap_geocode_requests_total",
			Help: "Remote geocoding lookups by outcome.",
		},
		[]string{"result"},
	)
	ResolutionPassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobmap_resolution_pass_duration_seconds",
			Help:    "Duration of each coordinate resolution pass in seconds.",
			Buckets: []float64{1, 5, 15, 30, 60, 120},
		},
	)
	GeoCacheSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobmap_geocache_entries",
			Help: "Number of entries in the geo cache, negatives included.",
		},
	)
	FilterRequestDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "jobmap_filter_request_duration_seconds",
			Help:       "Duration of offer filter requests.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"tag"},
	)
)

func StartMetricsServer(address string) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(GeocodeRequests)
	prometheus.MustRegister(ResolutionPassDuration)
	prometheus.MustRegister(GeoCacheSize)
	prometheus.MustRegister(FilterRequestDuration)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(address, nil))
	}()
}
