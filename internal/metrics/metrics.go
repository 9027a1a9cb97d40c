// Package metrics holds domain counters for the listing services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	created         *prometheus.CounterVec
	deleted         *prometheus.CounterVec
	imagesStored    *prometheus.CounterVec
	mediaCleanupErr *prometheus.CounterVec
	validationFail  *prometheus.CounterVec
}

// New registers the counters on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goout_resources_created_total",
			Help: "Resources created, by kind.",
		}, []string{"kind"}),
		deleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goout_resources_deleted_total",
			Help: "Resources deleted, by kind.",
		}, []string{"kind"}),
		imagesStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goout_images_stored_total",
			Help: "Images written to the media store, by kind.",
		}, []string{"kind"}),
		mediaCleanupErr: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goout_media_cleanup_failures_total",
			Help: "Media files that could not be removed, by kind and operation.",
		}, []string{"kind", "operation"}),
		validationFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goout_validation_failures_total",
			Help: "Create requests rejected by validation, by kind.",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{m.created, m.deleted, m.imagesStored, m.mediaCleanupErr, m.validationFail} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ResourceCreated(kind string, images int) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(kind).Inc()
	m.imagesStored.WithLabelValues(kind).Add(float64(images))
}

func (m *Metrics) ResourceDeleted(kind string) {
	if m == nil {
		return
	}
	m.deleted.WithLabelValues(kind).Inc()
}

// MediaCleanupFailed counts one file left behind; operation is "create" or "delete".
func (m *Metrics) MediaCleanupFailed(kind, operation string) {
	if m == nil {
		return
	}
	m.mediaCleanupErr.WithLabelValues(kind, operation).Inc()
}

func (m *Metrics) ValidationFailed(kind string) {
	if m == nil {
		return
	}
	m.validationFail.WithLabelValues(kind).Inc()
}
