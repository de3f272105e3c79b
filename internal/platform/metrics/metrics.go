// Package metrics provides observability for the aquarium server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aquarium"

// Collector gathers simulation metrics on its own registry.
// All Record methods are safe to call on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	ticks           prometheus.Counter
	tickLatency     prometheus.Histogram
	simTime         prometheus.Gauge
	clockSpeed      prometheus.Gauge
	fishTotal       prometheus.Gauge
	fishAlive       prometheus.Gauge
	feedings        *prometheus.CounterVec
	healthDeclines  prometheus.Counter
	loads           *prometheus.CounterVec
	eventsWritten   prometheus.Counter
	eventWriteErrs  prometheus.Counter
	wsConnections   prometheus.Gauge
	wsMessages      *prometheus.CounterVec
	wsErrors        prometheus.Counter
	wsDroppedFrames prometheus.Counter
}

// NewCollector creates a collector with a fresh registry that also exports
// Go runtime and process metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ticks_total",
			Help: "Clock ticks processed.",
		}),
		tickLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "tick_duration_seconds",
			Help:    "Time spent handling one clock tick.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "sim_time_seconds",
			Help: "Simulated clock as a unix timestamp.",
		}),
		clockSpeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "clock_speed",
			Help: "Simulated milliseconds per real millisecond.",
		}),
		fishTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "fish_total",
			Help: "Fish in the registry.",
		}),
		fishAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "fish_alive",
			Help: "Fish that are not dead.",
		}),
		feedings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "feedings_total",
			Help: "Feeding attempts by outcome.",
		}, []string{"outcome"}),
		healthDeclines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "health_declines_total",
			Help: "Health steps lost to missed feedings.",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "fish_loads_total",
			Help: "Fish API loads by result.",
		}, []string{"result"}),
		eventsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "journal_events_total",
			Help: "Journal events appended.",
		}),
		eventWriteErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "journal_write_errors_total",
			Help: "Journal events the persister failed to store.",
		}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "ws_connections",
			Help: "Active WebSocket connections.",
		}),
		wsMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "ws_messages_total",
			Help: "WebSocket messages by direction.",
		}, []string{"direction"}),
		wsErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ws_errors_total",
			Help: "WebSocket read or write errors.",
		}),
		wsDroppedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ws_dropped_frames_total",
			Help: "Broadcast frames dropped because a buffer was full.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.ticks, c.tickLatency, c.simTime, c.clockSpeed,
		c.fishTotal, c.fishAlive, c.feedings, c.healthDeclines, c.loads,
		c.eventsWritten, c.eventWriteErrs,
		c.wsConnections, c.wsMessages, c.wsErrors, c.wsDroppedFrames,
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordTick records a processed tick.
func (c *Collector) RecordTick(latency time.Duration, simTime time.Time) {
	if c == nil {
		return
	}
	c.ticks.Inc()
	c.tickLatency.Observe(latency.Seconds())
	c.simTime.Set(float64(simTime.Unix()))
}

// SetSpeed records the current clock speed.
func (c *Collector) SetSpeed(speed float64) {
	if c == nil {
		return
	}
	c.clockSpeed.Set(speed)
}

// SetFishCounts records registry population.
func (c *Collector) SetFishCounts(total, alive int) {
	if c == nil {
		return
	}
	c.fishTotal.Set(float64(total))
	c.fishAlive.Set(float64(alive))
}

// RecordFeeding counts a feeding attempt.
func (c *Collector) RecordFeeding(outcome string) {
	if c == nil {
		return
	}
	c.feedings.WithLabelValues(outcome).Inc()
}

// RecordHealthDecline counts tick-driven health losses.
func (c *Collector) RecordHealthDecline(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.healthDeclines.Add(float64(n))
}

// RecordLoad counts a fish API load.
func (c *Collector) RecordLoad(err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.loads.WithLabelValues(result).Inc()
}

// RecordEventWrite records a journal append.
func (c *Collector) RecordEventWrite(err error) {
	if c == nil {
		return
	}
	c.eventsWritten.Inc()
	if err != nil {
		c.eventWriteErrs.Inc()
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int) {
	if c == nil {
		return
	}
	c.wsConnections.Add(float64(delta))
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if c == nil {
		return
	}
	if incoming {
		c.wsMessages.WithLabelValues("in").Inc()
	} else {
		c.wsMessages.WithLabelValues("out").Inc()
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	if c == nil {
		return
	}
	c.wsErrors.Inc()
}

// RecordDroppedFrame records a broadcast frame dropped on a full buffer.
func (c *Collector) RecordDroppedFrame() {
	if c == nil {
		return
	}
	c.wsDroppedFrames.Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
