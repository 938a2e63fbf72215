package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "placeoffers"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Place metrics
var (
	PlaceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "place_operations_total",
			Help:      "Place service operations by kind and outcome",
		},
		[]string{"op", "status"},
	)

	PlacesCached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "places_cached",
			Help:      "Number of places in the in-memory collection",
		},
	)
)

// Image metrics
var (
	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_uploads_total",
			Help:      "Total number of image uploads",
		},
		[]string{"media_type", "status"},
	)

	ImageUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_upload_bytes",
			Help:      "Size distribution of uploaded images",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 7),
		},
	)
)

// RecordPlaceOp counts one place service operation.
func RecordPlaceOp(op string, err error) {
	PlaceOperations.WithLabelValues(op, status(err)).Inc()
}

// RecordUpload counts one image upload and, on success, its size.
func RecordUpload(mediaType string, size int, err error) {
	ImageUploads.WithLabelValues(mediaType, status(err)).Inc()
	if err == nil {
		ImageUploadBytes.Observe(float64(size))
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
