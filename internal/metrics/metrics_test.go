package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCollector_PhotoCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordPhotoCreated()
	c.RecordPhotoCreated()
	c.RecordPhotoDeleted()

	assert.Equal(t, 2.0, counterValue(t, reg, "gallery_photos_created_total", nil))
	assert.Equal(t, 1.0, counterValue(t, reg, "gallery_photos_deleted_total", nil))
}

func TestCollector_RecordUpload(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUpload(3, 1)
	c.RecordCleanupFailure()

	assert.Equal(t, 3.0, counterValue(t, reg, "gallery_upload_items_total", map[string]string{"outcome": "succeeded"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "gallery_upload_items_total", map[string]string{"outcome": "failed"}))
	assert.Equal(t, 3.0, counterValue(t, reg, "gallery_photos_created_total", nil))
	assert.Equal(t, 1.0, counterValue(t, reg, "gallery_storage_cleanup_failures_total", nil))
}

func TestCollector_RecordHTTPStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	assert.Equal(t, 2.0, counterValue(t, reg, "gallery_http_status_total", map[string]string{"status_code": "200"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "gallery_http_status_total", map[string]string{"status_code": "404"}))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordPhotoCreated()
		c.RecordPhotoDeleted()
		c.RecordUpload(1, 1)
		c.RecordCleanupFailure()
		c.RecordHTTPStatus(500)
	})
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordPhotoCreated()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "gallery_photos_created_total 1")
}
