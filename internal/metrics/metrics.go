package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"technical-analysis/internal/validation"
)

// Metrics holds the Prometheus metrics of an indicator batch run,
// registered on its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	CalculationsTotal *prometheus.CounterVec   // labels: indicator
	ValidationErrors  *prometheus.CounterVec   // labels: indicator
	PointsTotal       *prometheus.CounterVec   // labels: indicator
	ComputeDur        *prometheus.HistogramVec // labels: indicator
	BarsLoaded        prometheus.Counter
	SinkWriteDur      *prometheus.HistogramVec // labels: sink
	SinkErrors        *prometheus.CounterVec   // labels: sink
	LastSuccess       prometheus.Gauge
}

// NewMetrics registers and returns all metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		CalculationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ta_calculations_total",
			Help: "Indicator Calculate calls (by indicator)",
		}, []string{"indicator"}),
		ValidationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ta_validation_errors_total",
			Help: "Calculate calls rejected by input validation",
		}, []string{"indicator"}),
		PointsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ta_points_total",
			Help: "Result points produced",
		}, []string{"indicator"}),
		ComputeDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ta_compute_duration_seconds",
			Help:    "Indicator compute latency per series",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"indicator"}),
		BarsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ta_bars_loaded_total",
			Help: "Bars read from the configured source",
		}),
		SinkWriteDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ta_sink_write_duration_seconds",
			Help:    "Result sink write latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"sink"}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ta_sink_errors_total",
			Help: "Failed result sink writes",
		}, []string{"sink"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ta_last_success_timestamp_seconds",
			Help: "Unix time of the last run that finished without errors",
		}),
	}

	m.Registry.MustRegister(
		m.CalculationsTotal,
		m.ValidationErrors,
		m.PointsTotal,
		m.ComputeDur,
		m.BarsLoaded,
		m.SinkWriteDur,
		m.SinkErrors,
		m.LastSuccess,
	)

	return m
}

// ObserveCalculation records one Calculate call.
func (m *Metrics) ObserveCalculation(symbol string, d time.Duration, points int, err error) {
	m.CalculationsTotal.WithLabelValues(symbol).Inc()
	m.ComputeDur.WithLabelValues(symbol).Observe(d.Seconds())
	if err != nil {
		var ve *validation.ValidationError
		if errors.As(err, &ve) {
			m.ValidationErrors.WithLabelValues(symbol).Inc()
		}
		return
	}
	m.PointsTotal.WithLabelValues(symbol).Add(float64(points))
}

// ObserveSink records one sink write.
func (m *Metrics) ObserveSink(sink string, d time.Duration, err error) {
	m.SinkWriteDur.WithLabelValues(sink).Observe(d.Seconds())
	if err != nil {
		m.SinkErrors.WithLabelValues(sink).Inc()
	}
}

// MarkSuccess stamps the last-success gauge with now.
func (m *Metrics) MarkSuccess() {
	m.LastSuccess.SetToCurrentTime()
}

// Push sends the registry to a Prometheus Pushgateway, grouped by instrument.
func (m *Metrics) Push(url, job, instrument string) error {
	err := push.New(url, job).
		Gatherer(m.Registry).
		Grouping("instrument", instrument).
		Push()
	if err != nil {
		return fmt.Errorf("pushgateway %s: %w", url, err)
	}
	return nil
}
