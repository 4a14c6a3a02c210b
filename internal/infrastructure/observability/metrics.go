package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry            *prometheus.Registry
	RecordsDecodedTotal prometheus.Counter
	DecodeErrorsTotal   *prometheus.CounterVec
	FramesLoaded        prometheus.Gauge
	LoadDuration        prometheus.Histogram
	CommandsTotal       *prometheus.CounterVec
	ActiveSessions      prometheus.Gauge
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		RecordsDecodedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "terminus",
			Name:      "records_decoded_total",
			Help:      "Total trace records decoded",
		}),
		DecodeErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terminus",
			Name:      "decode_errors_total",
			Help:      "Trace lines rejected by kind",
		}, []string{"kind"}),
		FramesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "terminus",
			Name:      "frames_loaded",
			Help:      "Frames in the loaded trace",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "terminus",
			Name:      "load_duration_seconds",
			Help:      "Time to read and aggregate a trace file",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "terminus",
			Name:      "commands_total",
			Help:      "Commands executed by kind",
		}, []string{"kind"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "terminus",
			Name:      "active_sessions",
			Help:      "Number of remote inspection sessions",
		}),
	}
	r.MustRegister(m.RecordsDecodedTotal, m.DecodeErrorsTotal, m.FramesLoaded, m.LoadDuration, m.CommandsTotal, m.ActiveSessions)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
