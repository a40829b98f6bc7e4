package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/mem"
)

type memCollector struct {
	instance string

	memLimitDesc *prometheus.Desc
	memFreeDesc  *prometheus.Desc
}

// NewMemCollector returns a collector for the memory of the host.
func NewMemCollector(instance string) prometheus.Collector {
	return &memCollector{
		instance: instance,
		memLimitDesc: prometheus.NewDesc(
			"mem_total_bytes",
			"Total available memory in bytes",
			[]string{"instance"}, nil),
		memFreeDesc: prometheus.NewDesc(
			"mem_free_bytes",
			"Free memory in bytes",
			[]string{"instance"}, nil),
	}
}

func (c *memCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.memLimitDesc
	ch <- c.memFreeDesc
}

func (c *memCollector) Collect(ch chan<- prometheus.Metric) {
	info, err := mem.VirtualMemory()
	if err != nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(c.memLimitDesc, prometheus.GaugeValue, float64(info.Total), c.instance)
	ch <- prometheus.MustNewConstMetric(c.memFreeDesc, prometheus.GaugeValue, float64(info.Available), c.instance)
}
