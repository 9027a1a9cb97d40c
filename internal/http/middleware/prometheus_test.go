package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMeteredApp mounts a listing-shaped route set behind the middleware on a
// fresh registry.
func newMeteredApp(t *testing.T, skip ...string) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	pm, err := NewPrometheusMiddleware(reg, skip...)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(pm.Handler())
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Get("/metrics", ok)
	app.Get("/healthz", ok)
	app.Get("/api/items", ok)
	app.Get("/api/items/:id", ok)
	app.Delete("/api/items/:id", ok)
	app.Get("/api/hotels/user/:userId", ok)
	app.Post("/api/items", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	})
	return app, pm, reg
}

func TestPrometheusMiddleware_Labels(t *testing.T) {
	app, pm, _ := newMeteredApp(t)

	tests := []struct {
		method, target string
		path, status   string
	}{
		{"GET", "/api/items", "/api/items", "200"},
		{"GET", "/api/items/6650f1", "/api/items/:id", "200"},
		{"DELETE", "/api/items/6650f1", "/api/items/:id", "200"},
		{"GET", "/api/hotels/user/u-42", "/api/hotels/user/:userId", "200"},
		{"POST", "/api/items", "/api/items", "400"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			_, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)
			assert.Equal(t, 1.0, testutil.ToFloat64(pm.requestCount.WithLabelValues(tt.method, tt.path, tt.status)))
		})
	}

	// One series per distinct label set; the raw ids never become labels.
	assert.Equal(t, 5, testutil.CollectAndCount(pm.requestCount))
	assert.Equal(t, 5, testutil.CollectAndCount(pm.requestDuration))
}

func TestPrometheusMiddleware_Skips(t *testing.T) {
	app, pm, reg := newMeteredApp(t, "/healthz")

	for _, target := range []string{"/metrics", "/healthz"} {
		_, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, 0, testutil.CollectAndCount(pm.requestCount))
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		assert.Empty(t, mf.GetMetric(), mf.GetName())
	}
}

func TestPrometheusMiddleware_Unmatched(t *testing.T) {
	app, pm, _ := newMeteredApp(t)

	for _, target := range []string{"/api/boats", "/nope/123"} {
		_, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(pm.requestCount.WithLabelValues("GET", "unmatched", "404")))
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
