package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search engine metrics. Registered explicitly from the composition root
// (no init()) so library consumers of the core packages stay registry-free.
var (
	QueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mekbench",
		Name:      "queries_total",
		Help:      "Total number of parsed search queries",
	})

	ParseErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mekbench",
		Name:      "query_parse_errors_total",
		Help:      "Total number of positional parse diagnostics",
	})

	EvalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mekbench",
		Name:      "catalog_eval_duration_seconds",
		Help:      "Full catalog evaluation duration in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	OptionCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mekbench",
		Name:      "option_cache_hits_total",
		Help:      "Available-option list cache hits",
	})
)

// RegisterSearchMetrics registers the search engine collectors.
func RegisterSearchMetrics() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(ParseErrorsTotal)
	prometheus.MustRegister(EvalDuration)
	prometheus.MustRegister(OptionCacheHits)
}
