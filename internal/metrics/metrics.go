// Package metrics exposes the application's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tcw1"

// Collector owns a private registry so tests can build as many as they like.
type Collector struct {
	Registry *prometheus.Registry

	httpInFlight  prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	trades        *prometheus.CounterVec
	tradeVolume   *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	deposits      *prometheus.CounterVec
	logins        *prometheus.CounterVec
	renewals      *prometheus.CounterVec
	priceFetches  *prometheus.CounterVec
	jobRuns       *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

func New() *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "path"}),
		trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_total",
			Help:      "Executed trades by pair.",
		}, []string{"pair"}),
		tradeVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "volume_usd_total",
			Help:      "Traded volume in USD by pair.",
		}, []string{"pair"}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "blockchain",
			Name:      "confirmations_total",
			Help:      "Transactions moved to confirmed.",
		}, []string{"currency"}),
		deposits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deposits",
			Name:      "transitions_total",
			Help:      "Deposit status transitions.",
		}, []string{"status"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "membership",
			Name:      "renewals_total",
			Help:      "Membership renewal attempts by result.",
		}, []string{"result"}),
		priceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricefeed",
			Name:      "fetches_total",
			Help:      "Upstream price fetches by provider and result.",
		}, []string{"provider", "result"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by job and result.",
		}, []string{"job", "result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by cache and result.",
		}, []string{"cache", "result"}),
	}

	c.Registry.MustRegister(
		c.httpInFlight,
		c.httpRequests,
		c.httpDuration,
		c.trades,
		c.tradeVolume,
		c.confirmations,
		c.deposits,
		c.logins,
		c.renewals,
		c.priceFetches,
		c.jobRuns,
		c.cacheLookups,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return c
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))
}

// Middleware records request counts and latency per matched route.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if ctx.Path() == "/metrics" {
			return ctx.Next()
		}

		start := time.Now()
		c.httpInFlight.Inc()
		defer c.httpInFlight.Dec()

		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := ctx.Route().Path
		c.httpRequests.WithLabelValues(ctx.Method(), path, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(ctx.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

func (c *Collector) RecordTrade(pair string, volumeUSD float64) {
	c.trades.WithLabelValues(pair).Inc()
	c.tradeVolume.WithLabelValues(pair).Add(volumeUSD)
}

func (c *Collector) RecordConfirmation(currency string) {
	c.confirmations.WithLabelValues(currency).Inc()
}

func (c *Collector) RecordDeposit(status string) {
	c.deposits.WithLabelValues(status).Inc()
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordRenewal(result string) {
	c.renewals.WithLabelValues(result).Inc()
}

func (c *Collector) RecordPriceFetch(provider, result string) {
	c.priceFetches.WithLabelValues(provider, result).Inc()
}

func (c *Collector) RecordJobRun(job, result string) {
	c.jobRuns.WithLabelValues(job, result).Inc()
}

func (c *Collector) RecordCacheHit(cache string) {
	c.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (c *Collector) RecordCacheMiss(cache string) {
	c.cacheLookups.WithLabelValues(cache, "miss").Inc()
}
