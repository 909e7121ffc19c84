// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records counters for the rating synchronizer and live bus.
type Collector struct {
	ratingRecomputes prometheus.Counter
	ratingWrites     prometheus.Counter
	ratingNoops      prometheus.Counter
	liveEvents       prometheus.Counter
	activeWatches    prometheus.Gauge

	registry *prometheus.Registry
}

// NewCollector creates a Collector and registers its metrics on a private
// registry.
func NewCollector() *Collector {
	c := &Collector{
		ratingRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wardrobe_rating_recomputes_total",
			Help: "Total outfit rating recomputations",
		}),
		ratingWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wardrobe_rating_writes_total",
			Help: "Total outfit rating writes after a recomputation changed the value",
		}),
		ratingNoops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wardrobe_rating_noops_total",
			Help: "Total recomputations skipped because the rating was already converged",
		}),
		liveEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wardrobe_live_events_total",
			Help: "Total change events delivered to live subscriptions",
		}),
		activeWatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wardrobe_active_watches",
			Help: "Outfit watches currently held open by connected clients",
		}),
		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(
		c.ratingRecomputes, c.ratingWrites, c.ratingNoops, c.liveEvents, c.activeWatches,
	)

	return c
}

// RecordRecompute counts one rating recomputation and whether it wrote.
func (c *Collector) RecordRecompute(wrote bool) {
	c.ratingRecomputes.Inc()
	if wrote {
		c.ratingWrites.Inc()
	} else {
		c.ratingNoops.Inc()
	}
}

// RecordLiveEvent counts one delivered change event.
func (c *Collector) RecordLiveEvent() {
	c.liveEvents.Inc()
}

// WatchStarted and WatchStopped track the active watch gauge.
func (c *Collector) WatchStarted() { c.activeWatches.Inc() }

func (c *Collector) WatchStopped() { c.activeWatches.Dec() }

// Handler returns the HTTP handler serving the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
