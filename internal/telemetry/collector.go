// Package telemetry exposes Prometheus metrics for simulation runs and the
// HTTP transport.
//
// Collectors are per instance and registered on the Registerer passed to
// NewCollectorWithRegistry, so tests can use an isolated registry.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inference-sim/cpusched/sim"
)

const namespace = "cpusched"

var (
	// Scheduling times are in abstract units; buckets cover the small
	// hand-written workloads as well as generated ones.
	timeBuckets    = []float64{0.5, 1, 2, 5, 10, 20, 50, 100, 250, 500}
	latencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2}
)

// Collector records simulation outcomes.
type Collector struct {
	simulations     *prometheus.CounterVec
	switches        *prometheus.CounterVec
	contextSwitches *prometheus.CounterVec
	customFallbacks prometheus.Counter
	avgWaiting      *prometheus.HistogramVec
	avgTurnaround   *prometheus.HistogramVec
	utilization     *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// NewCollectorWithRegistry creates a collector registered on registry.
// Panics if the metrics are already registered there.
func NewCollectorWithRegistry(registry prometheus.Registerer) *Collector {
	c := &Collector{
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Completed simulations by requested and used policy",
		}, []string{"requested", "used"}),
		switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_switches_total",
			Help:      "Simulations where the selector replaced the requested policy",
		}, []string{"from", "to"}),
		contextSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "context_switches_total",
			Help:      "Context switches across all simulations",
		}, []string{"policy"}),
		customFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "custom_fallbacks_total",
			Help:      "Custom policy slices that used the fallback choice",
		}),
		avgWaiting: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "avg_waiting_time",
			Help:      "Average waiting time per simulation (time units)",
			Buckets:   timeBuckets,
		}, []string{"policy"}),
		avgTurnaround: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "avg_turnaround_time",
			Help:      "Average turnaround time per simulation (time units)",
			Buckets:   timeBuckets,
		}, []string{"policy"}),
		utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_utilization",
			Help:      "CPU utilization of the most recent simulation (0.0 to 1.0)",
		}, []string{"policy"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   latencyBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		c.simulations,
		c.switches,
		c.contextSwitches,
		c.customFallbacks,
		c.avgWaiting,
		c.avgTurnaround,
		c.utilization,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

// Observe records one finished simulation. Nil results are ignored.
func (c *Collector) Observe(res *sim.Result) {
	if res == nil {
		return
	}
	used := res.UsedPolicy.String()
	c.simulations.WithLabelValues(res.RequestedPolicy.String(), used).Inc()
	if res.Switched() {
		c.switches.WithLabelValues(res.RequestedPolicy.String(), used).Inc()
	}
	c.contextSwitches.WithLabelValues(used).Add(float64(res.ContextSwitches))
	if res.CustomFallbacks > 0 {
		c.customFallbacks.Add(float64(res.CustomFallbacks))
	}
	c.avgWaiting.WithLabelValues(used).Observe(res.Metrics.AvgWaitingTime)
	c.avgTurnaround.WithLabelValues(used).Observe(res.Metrics.AvgTurnaroundTime)
	c.utilization.WithLabelValues(used).Set(res.Metrics.CPUUtilization)
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	c.httpRequests.With(labels).Inc()
	c.httpLatency.With(labels).Observe(duration.Seconds())
}
