// Package metrics define las métricas Prometheus del servicio.
//
// Todos los métodos de *Metrics son nil-safe: un engine sin métricas
// configuradas (tests, CLI) simplemente no registra nada.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de un grant.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

type Metrics struct {
	grants       *prometheus.CounterVec
	issued       *prometheus.CounterVec
	refreshReuse prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight prometheus.Gauge
	rateLimited  *prometheus.CounterVec
	corsRejects  prometheus.Counter
	gatherer     prometheus.Gatherer
}

// New crea y registra las métricas. Si reg es nil usa un registry propio
// (no el global), útil para tests.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		grants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_grants_total",
			Help: "Canjes en /auth/token por grant y resultado",
		}, []string{"grant", "result"}),
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_tokens_issued_total",
			Help: "Tokens emitidos por tipo (access, refresh, code)",
		}, []string{"kind"}),
		refreshReuse: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authcore_refresh_reuse_total",
			Help: "Refresh tokens revocados presentados de nuevo",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authcore_http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "authcore_http_inflight_requests",
			Help: "Requests en vuelo",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authcore_rate_limited_total",
			Help: "Requests rechazadas por rate limit",
		}, []string{"route"}),
		corsRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authcore_cors_rejects_total",
			Help: "Requests CORS rechazadas por origin no permitido",
		}),
		gatherer: reg,
	}
	for _, c := range []prometheus.Collector{
		m.grants, m.issued, m.refreshReuse,
		m.httpRequests, m.httpDuration, m.httpInflight, m.rateLimited, m.corsRejects,
	} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// register ignora duplicados.
func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

// Handler expone /metrics para el registry de m.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Grant(grant, result string) {
	if m == nil {
		return
	}
	m.grants.WithLabelValues(grant, result).Inc()
}

func (m *Metrics) Issued(kind string) {
	if m == nil {
		return
	}
	m.issued.WithLabelValues(kind).Inc()
}

func (m *Metrics) RefreshReuse() {
	if m == nil {
		return
	}
	m.refreshReuse.Inc()
}

func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

func (m *Metrics) CORSReject() {
	if m == nil {
		return
	}
	m.corsRejects.Inc()
}

// InflightAdd suma delta al gauge de requests en vuelo.
func (m *Metrics) InflightAdd(delta float64) {
	if m == nil {
		return
	}
	m.httpInflight.Add(delta)
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RegisterPool agrega gauges del pool pgx al registry.
func RegisterPool(reg *prometheus.Registry, pool func() *pgxpool.Pool) error {
	return register(reg, &poolCollector{
		pool:     pool,
		acquired: prometheus.NewDesc("authcore_pgxpool_acquired", "Conexiones adquiridas", nil, nil),
		idle:     prometheus.NewDesc("authcore_pgxpool_idle", "Conexiones inactivas", nil, nil),
		total:    prometheus.NewDesc("authcore_pgxpool_total", "Conexiones totales", nil, nil),
	})
}

type poolCollector struct {
	pool                  func() *pgxpool.Pool
	acquired, idle, total *prometheus.Desc
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	p := c.pool()
	if p == nil {
		return
	}
	st := p.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(st.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(st.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(st.TotalConns()))
}
