// Package metrics exposes Prometheus counters for the population pipeline.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeResolved = "resolved"
	OutcomeSkipped  = "skipped"
)

// Collector is safe to use as a nil pointer; every method is then a no-op.
type Collector struct {
	gatherer prometheus.Gatherer

	IndicatorFetches *prometheus.CounterVec
	ResultRecords    prometheus.Gauge
	ReferenceRows    prometheus.Gauge
}

// NewCollector registers the pipeline metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	fetches, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "indicator_fetch_total",
		Help: "Indicator lookups per country, labeled by outcome and skip reason.",
	}, []string{"outcome", "reason"}), "indicator_fetch_total")
	if err != nil {
		return nil, err
	}
	records, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "resultset_records",
		Help: "Countries resolved in the most recent pipeline run.",
	}), "resultset_records")
	if err != nil {
		return nil, err
	}
	refs, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reference_rows",
		Help: "Rows read from the reference spreadsheet in the most recent run.",
	}), "reference_rows")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		IndicatorFetches: fetches,
		ResultRecords:    records,
		ReferenceRows:    refs,
	}, nil
}

// ObserveFetch counts one indicator lookup. reason is empty for resolved
// lookups.
func (c *Collector) ObserveFetch(outcome, reason string) {
	if c == nil || c.IndicatorFetches == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	c.IndicatorFetches.WithLabelValues(outcome, reason).Inc()
}

func (c *Collector) SetCounts(referenceRows, records int) {
	if c == nil {
		return
	}
	if c.ReferenceRows != nil {
		c.ReferenceRows.Set(float64(referenceRows))
	}
	if c.ResultRecords != nil {
		c.ResultRecords.Set(float64(records))
	}
}

func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
