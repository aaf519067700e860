package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search and extraction Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by retrieval method",
		},
		[]string{"method", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cardsearch",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds by retrieval method",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method"},
	)

	ExtractionMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cardsearch",
			Name:      "extraction_matches_total",
			Help:      "Total rule matches persisted by derivation method",
		},
		[]string{"method"},
	)

	ExtractionCardsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cardsearch",
			Name:      "extraction_cards_total",
			Help:      "Total cards processed by extraction runs",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and extraction metrics. Must be
// called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(ExtractionMatchesTotal)
	prometheus.MustRegister(ExtractionCardsTotal)
	searchMetricsRegistered = true
}
