// Package metrics exposes Prometheus instrumentation for the ad service.
//
// The catalog gauges are computed on scrape from the database so they always reflect
// stored state; request and selection counters are recorded in-process.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "ad_service"

// scrapeTimeout bounds each database count performed during a scrape.
const scrapeTimeout = 2 * time.Second

// CatalogSource supplies the stored counts reported on every scrape.
type CatalogSource interface {
	CountActiveAds(ctx context.Context) (int64, error)
	CountImpressions(ctx context.Context) (int64, error)
}

type Metrics struct {
	registry *prometheus.Registry

	Selections          *prometheus.CounterVec
	ImpressionsRecorded prometheus.Counter
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

func New(source CatalogSource) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		Selections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Ad selections by candidate pool (fresh or fallback)",
		}, []string{"pool"}),
		ImpressionsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impressions_recorded_total",
			Help:      "Impressions recorded by this process",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"method", "route"}),
	}

	if source != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_ads",
			Help:      "Number of active ads",
		}, scrape("active_ads", source.CountActiveAds))
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "total_impressions",
			Help:      "Total ad impressions",
		}, scrape("total_impressions", source.CountImpressions))
	}

	return m
}

func scrape(name string, count func(context.Context) (int64, error)) func() float64 {
	return func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
		defer cancel()

		n, err := count(ctx)
		if err != nil {
			log.Error().Err(err).Str("metric", name).Msg("metrics scrape failed")
			return 0
		}
		return float64(n)
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveSelection(fallback bool) {
	pool := "fresh"
	if fallback {
		pool = "fallback"
	}
	m.Selections.WithLabelValues(pool).Inc()
}

func (m *Metrics) ObserveImpression() {
	m.ImpressionsRecorded.Inc()
}

// Middleware records request counts and latency keyed by the matched route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
