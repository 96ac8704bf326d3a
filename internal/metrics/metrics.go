// Package metrics exposes gallery counters in the Prometheus format.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the gallery counters. A nil *Collector records nothing, so
// callers that run without metrics need no guards.
type Collector struct {
	photosCreated   prometheus.Counter
	photosDeleted   prometheus.Counter
	uploads         *prometheus.CounterVec
	cleanupFailures prometheus.Counter
	httpStatus      *prometheus.CounterVec
}

// NewCollector registers the gallery counters on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		photosCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gallery_photos_created_total",
			Help: "Photos created through the API or batch upload.",
		}),
		photosDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gallery_photos_deleted_total",
			Help: "Photos deleted.",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_upload_items_total",
			Help: "Batch upload items by outcome.",
		}, []string{"outcome"}),
		cleanupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gallery_storage_cleanup_failures_total",
			Help: "Stored objects that could not be removed after a failed or deleted photo.",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gallery_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.photosCreated,
		c.photosDeleted,
		c.uploads,
		c.cleanupFailures,
		c.httpStatus,
	)
	return c
}

func (c *Collector) RecordPhotoCreated() {
	if c == nil {
		return
	}
	c.photosCreated.Inc()
}

func (c *Collector) RecordPhotoDeleted() {
	if c == nil {
		return
	}
	c.photosDeleted.Inc()
}

// RecordUpload counts the outcome of one batch.
func (c *Collector) RecordUpload(succeeded, failed int) {
	if c == nil {
		return
	}
	c.uploads.WithLabelValues("succeeded").Add(float64(succeeded))
	c.uploads.WithLabelValues("failed").Add(float64(failed))
	c.photosCreated.Add(float64(succeeded))
}

func (c *Collector) RecordCleanupFailure() {
	if c == nil {
		return
	}
	c.cleanupFailures.Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	if c == nil {
		return
	}
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler serves the registry for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
