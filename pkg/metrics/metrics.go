// Package metrics holds the Prometheus collectors for a gazetap session.
//
// Collectors live on a private registry rather than the global default so
// tests and multiple sessions in one process do not collide.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "gazetap"

// Discard reasons used as the "reason" label of DiscardedTotal.
const (
	ReasonParseError        = "parse_error"
	ReasonProtocolViolation = "protocol_violation"
	ReasonFilterMiss        = "filter_miss"
	ReasonMissingField      = "missing_field"
)

// Metrics is the set of collectors updated by the streaming pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	ChunksTotal    prometheus.Counter
	BytesTotal     prometheus.Counter
	LinesTotal     prometheus.Counter
	EmittedTotal   prometheus.Counter
	DiscardedTotal *prometheus.CounterVec
	RecorderDrops  prometheus.Counter
	CarryBytes     prometheus.Gauge
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		ChunksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_received_total",
			Help:      "Raw chunks read from the upstream socket",
		}),
		BytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_received_total",
			Help:      "Bytes read from the upstream socket",
		}),
		LinesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_framed_total",
			Help:      "Complete lines reassembled from the stream",
		}),
		EmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_emitted_total",
			Help:      "Gaze records written to the output sink",
		}),
		DiscardedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_discarded_total",
			Help:      "Lines dropped before output, by reason",
		}, []string{"reason"}),
		RecorderDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recorder_dropped_total",
			Help:      "Emitted samples not recorded because the recorder queue was full",
		}),
		CarryBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "carry_bytes",
			Help:      "Size of the unterminated fragment awaiting the next chunk",
		}),
	}

	m.Registry.MustRegister(
		m.ChunksTotal,
		m.BytesTotal,
		m.LinesTotal,
		m.EmittedTotal,
		m.DiscardedTotal,
		m.RecorderDrops,
		m.CarryBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveChunk records one chunk of n bytes.
func (m *Metrics) ObserveChunk(n int) {
	if m == nil {
		return
	}
	m.ChunksTotal.Inc()
	m.BytesTotal.Add(float64(n))
}

// ObserveLines records n framed lines and the carry left behind.
func (m *Metrics) ObserveLines(n, carry int) {
	if m == nil {
		return
	}
	m.LinesTotal.Add(float64(n))
	m.CarryBytes.Set(float64(carry))
}

// ObserveEmitted records one written gaze record.
func (m *Metrics) ObserveEmitted() {
	if m == nil {
		return
	}
	m.EmittedTotal.Inc()
}

// ObserveDiscard records one dropped line.
func (m *Metrics) ObserveDiscard(reason string) {
	if m == nil {
		return
	}
	m.DiscardedTotal.WithLabelValues(reason).Inc()
}

// ObserveRecorderDrop records one sample the recorder could not accept.
func (m *Metrics) ObserveRecorderDrop() {
	if m == nil {
		return
	}
	m.RecorderDrops.Inc()
}
