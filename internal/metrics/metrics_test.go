package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	active, impressions int64
	err                 error
}

func (f fakeSource) CountActiveAds(context.Context) (int64, error)   { return f.active, f.err }
func (f fakeSource) CountImpressions(context.Context) (int64, error) { return f.impressions, f.err }

func TestMetrics_CatalogGauges(t *testing.T) {
	m := New(fakeSource{active: 3, impressions: 41})

	expected := `
# HELP ad_service_active_ads Number of active ads
# TYPE ad_service_active_ads gauge
ad_service_active_ads 3
# HELP ad_service_total_impressions Total ad impressions
# TYPE ad_service_total_impressions counter
ad_service_total_impressions 41
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"ad_service_active_ads", "ad_service_total_impressions")
	require.NoError(t, err)
}

func TestMetrics_ScrapeErrorReportsZero(t *testing.T) {
	m := New(fakeSource{active: 3, err: errors.New("db down")})

	n, err := testutil.GatherAndCount(m.Registry(), "ad_service_active_ads")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_ObserveSelection(t *testing.T) {
	m := New(nil)

	m.ObserveSelection(false)
	m.ObserveSelection(false)
	m.ObserveSelection(true)
	m.ObserveImpression()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Selections.WithLabelValues("fresh")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImpressionsRecorded))
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(fakeSource{active: 1, impressions: 2})

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/9", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/ping/:id", "204")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ad_service_active_ads 1")
	assert.Contains(t, w.Body.String(), "ad_service_total_impressions 2")
}
