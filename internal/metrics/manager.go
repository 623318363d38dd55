package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests      *prometheus.CounterVec
	CounterSubmissions   *prometheus.CounterVec
	CounterImportedLines *prometheus.CounterVec
	CounterRequestPanic  prometheus.Counter

	// gauges
	GaugeRequests       prometheus.Gauge
	GaugeAthletesAtRisk prometheus.Gauge
	GaugeRecords        prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
	HistEngineDuration  *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("squadload", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("squadload", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming API requests",
	}, []string{"method", "status"})
	counterSubmissions := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "submissions",
		Help:      "Check-in and check-out submissions by outcome",
	}, []string{"kind", "outcome"})
	counterImportedLines := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "imported_lines",
		Help:      "Lines read from JSONL imports, imported or skipped",
	}, []string{"result"})
	counterRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_panic",
		Help:      "Requests whose handler panicked",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeAthletesAtRisk := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "athletes_acwr_danger",
		Help:      "Athletes above the ACWR danger threshold at the last risk board computation",
	})
	gaugeRecords := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "records",
		Help:      "Session records in the last loaded table",
	})

	histReqDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		},
	)
	histEngineDuration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			Name:      "engine_duration_seconds",
			Help:      "Duration of analytics recomputations in seconds",
		},
		[]string{"operation"},
	)

	return &Manager{
		CounterRequests:      counterRequests,
		CounterSubmissions:   counterSubmissions,
		CounterImportedLines: counterImportedLines,
		CounterRequestPanic:  counterRequestPanic,
		GaugeRequests:        gaugeRequests,
		GaugeAthletesAtRisk:  gaugeAthletesAtRisk,
		GaugeRecords:         gaugeRecords,
		HistRequestDuration:  histReqDuration,
		HistEngineDuration:   histEngineDuration,
	}
}
