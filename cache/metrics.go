package cache

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes Manager stats as Prometheus metrics. Register it on a
// prometheus.Registerer; each scrape reads a fresh Stats snapshot.
type Collector struct {
	m *Manager

	hits        *prometheus.Desc
	misses      *prometheus.Desc
	evictions   *prometheus.Desc
	expirations *prometheus.Desc
	entries     *prometheus.Desc
	diskBytes   *prometheus.Desc
}

// NewCollector creates a Collector for m.
func NewCollector(m *Manager) *Collector {
	return &Collector{
		m: m,
		hits: prometheus.NewDesc(
			"flixor_cache_hits_total",
			"Number of cache lookups served from either tier.",
			nil, nil),
		misses: prometheus.NewDesc(
			"flixor_cache_misses_total",
			"Number of cache lookups that found no fresh entry.",
			nil, nil),
		evictions: prometheus.NewDesc(
			"flixor_cache_evictions_total",
			"Number of memory-tier entries evicted by the capacity bound.",
			nil, nil),
		expirations: prometheus.NewDesc(
			"flixor_cache_expirations_total",
			"Number of entries removed because their TTL elapsed.",
			nil, nil),
		entries: prometheus.NewDesc(
			"flixor_cache_memory_entries",
			"Current number of entries in the memory tier.",
			nil, nil),
		diskBytes: prometheus.NewDesc(
			"flixor_cache_disk_bytes",
			"Total size of the disk tier in bytes.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.expirations
	ch <- c.entries
	ch <- c.diskBytes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.expirations, prometheus.CounterValue, float64(s.Expirations))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(s.Entries))
	ch <- prometheus.MustNewConstMetric(c.diskBytes, prometheus.GaugeValue, float64(c.m.DiskSize()))
}
