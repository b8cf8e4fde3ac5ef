// Package metrics exposes Prometheus metrics for collection passes and rule changes.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all Traffic Silencer metrics.
type Registry struct {
	// Collection passes
	PassesTotal        prometheus.Counter
	PassesOverlapping  prometheus.Counter
	PassDuration       prometheus.Histogram
	ProcessesSeen      prometheus.Gauge
	ProcessesDenied    prometheus.Counter
	PathResolveErrors  *prometheus.CounterVec
	ExecutableGroups   prometheus.Gauge
	BlockedExecutables prometheus.Gauge

	// Rule store
	RuleCommands *prometheus.CounterVec
	RulesCached  prometheus.Gauge
	RuleLoads    *prometheus.CounterVec
}

// Get returns the global metrics registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = newRegistry()
	})
	return registry
}

func newRegistry() *Registry {
	r := &Registry{}

	r.PassesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silencer_collection_passes_total",
		Help: "Completed process collection passes",
	})
	r.PassesOverlapping = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silencer_collection_passes_overlapping_total",
		Help: "Passes started while a previous pass was still running",
	})
	r.PassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "silencer_collection_pass_duration_seconds",
		Help:    "Duration of a collection pass including rule reload",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
	r.ProcessesSeen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "silencer_processes_seen",
		Help: "Processes enumerated in the last pass",
	})
	r.ProcessesDenied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silencer_processes_inaccessible_total",
		Help: "Processes dropped because they could not be opened",
	})
	r.PathResolveErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "silencer_path_resolve_errors_total",
		Help: "Executable path lookups that failed, by reason",
	}, []string{"reason"})
	r.ExecutableGroups = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "silencer_executable_groups",
		Help: "Executable groups currently in the model",
	})
	r.BlockedExecutables = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "silencer_blocked_executables",
		Help: "Executable groups currently marked as blocked",
	})

	r.RuleCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "silencer_rule_commands_total",
		Help: "Firewall rule commands by operation and result",
	}, []string{"op", "result"})
	r.RulesCached = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "silencer_rules_cached",
		Help: "Blocked executable paths in the rule cache",
	})
	r.RuleLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "silencer_rule_loads_total",
		Help: "Rule listing reloads by result",
	}, []string{"result"})

	return r
}

// Handler returns the HTTP handler serving the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Result maps a success flag to a metric label value.
func Result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
