package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "doccov_analysis_seconds",
		Help:    "Time spent analyzing a single source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	DeclarationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doccov_declarations_total",
		Help: "Declarations discovered, by kind and documentation status.",
	}, []string{"kind", "status"})

	ParseFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doccov_parse_failures_total",
		Help: "Total number of sources rejected because of syntax errors.",
	})

	StyleCheckFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doccov_style_check_failures_total",
		Help: "Total number of style checker invocations that failed.",
	}, []string{"checker"})

	ViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doccov_violations_total",
		Help: "Style violations reported, by checker.",
	}, []string{"checker"})

	LastCoveragePercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "doccov_last_coverage_percent",
		Help: "Coverage percentage of the most recently analyzed file.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doccov_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	ParserLeases = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "doccov_parser_leases",
		Help: "Current number of tree-sitter parsers leased from the pool.",
	})
)
