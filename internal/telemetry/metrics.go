// Package telemetry counts what a conversion run did. A batch run has no
// scrape window, so the registry is written to a node-exporter textfile
// at the end of the run instead of being served.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "kkjson"

type Metrics struct {
	reg *prometheus.Registry

	Rows        prometheus.Counter
	Skipped     prometheus.Counter
	Households  prometheus.Counter
	Fallbacks   *prometheus.CounterVec
	SinkWrites  *prometheus.CounterVec
	LastSuccess prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_read_total",
			Help: "Registry rows loaded from the input.",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_skipped_total",
			Help: "Rows dropped because the household number is blank.",
		}),
		Households: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "households_total",
			Help: "Household documents built.",
		}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "field_fallbacks_total",
			Help: "Non-empty cells that failed to parse and were replaced by a default.",
		}, []string{"field"}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sink_writes_total",
			Help: "Documents durably written, per sink.",
		}, []string{"sink"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last run that completed without error.",
		}),
	}
	m.reg.MustRegister(m.Rows, m.Skipped, m.Households, m.Fallbacks, m.SinkWrites, m.LastSuccess)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

/* household.Observer */

func (m *Metrics) RowsRead(n int)        { m.Rows.Add(float64(n)) }
func (m *Metrics) RowsSkipped(n int)     { m.Skipped.Add(float64(n)) }
func (m *Metrics) Household()            { m.Households.Inc() }
func (m *Metrics) Fallback(field string) { m.Fallbacks.WithLabelValues(field).Inc() }

// SinkWrite matches sink.EmitFn.
func (m *Metrics) SinkWrite(name, _ string) { m.SinkWrites.WithLabelValues(name).Inc() }

func (m *Metrics) MarkSuccess() { m.LastSuccess.SetToCurrentTime() }

// WriteTextfile writes the registry in text exposition format. An empty
// path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}
