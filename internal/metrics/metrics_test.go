package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ResourceCreated("item", 3)
	m.ResourceCreated("item", 2)
	m.ResourceDeleted("hotel")
	m.MediaCleanupFailed("hotel", "delete")
	m.ValidationFailed("guide")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.created.WithLabelValues("item")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.imagesStored.WithLabelValues("item")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deleted.WithLabelValues("hotel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mediaCleanupErr.WithLabelValues("hotel", "delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationFail.WithLabelValues("guide")))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ResourceCreated("item", 1)
		m.ResourceDeleted("item")
		m.MediaCleanupFailed("item", "create")
		m.ValidationFailed("item")
	})
}
