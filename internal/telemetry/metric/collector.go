package metric

import "github.com/prometheus/client_golang/prometheus"

// UnitStats reports live statistics of an actor system.
type UnitStats interface {
	// Units returns the number of registered mailboxes.
	Units() int
}

// Collector collects gauges that are cheaper to compute on scrape
// than to keep up to date on every change.
type Collector struct {
	stats UnitStats
	units *prometheus.Desc
}

// NewCollector creates a collector reading from stats.
func NewCollector(stats UnitStats) *Collector {
	return &Collector{
		stats: stats,
		units: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "unit", "alive"),
			"Units currently registered in the actor system",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.units
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.units, prometheus.GaugeValue, float64(c.stats.Units()))
}
