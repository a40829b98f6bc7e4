package prometheus

import (
	"github.com/ob1/scannerd/coordinator"
	"github.com/ob1/scannerd/session"

	"github.com/prometheus/client_golang/prometheus"
)

// SlotReader provides the state of the slots and their processes.
type SlotReader interface {
	Slots() []session.Slot
	Processes() []coordinator.ProcessStatus
}

type slotsCollector struct {
	instance string
	reader   SlotReader

	slotStateDesc      *prometheus.Desc
	slotRunsDesc       *prometheus.Desc
	slotDevicesDesc    *prometheus.Desc
	slotLogsDesc       *prometheus.Desc
	processDesc        *prometheus.Desc
	processCPUDesc     *prometheus.Desc
	processMemoryDesc  *prometheus.Desc
	processStatesDesc  *prometheus.Desc
	upgradableDesc     *prometheus.Desc
	upgradeRunningDesc *prometheus.Desc
}

func NewSlotsCollector(instance string, r SlotReader) prometheus.Collector {
	return &slotsCollector{
		instance: instance,
		reader:   r,
		slotStateDesc: prometheus.NewDesc(
			"scannerd_slot_state",
			"Current state per slot",
			[]string{"instance", "kind", "state"}, nil),
		slotRunsDesc: prometheus.NewDesc(
			"scannerd_slot_runs_total",
			"Number of runs per slot",
			[]string{"instance", "kind"}, nil),
		slotDevicesDesc: prometheus.NewDesc(
			"scannerd_slot_devices",
			"Number of devices in the snapshot of a slot",
			[]string{"instance", "kind"}, nil),
		slotLogsDesc: prometheus.NewDesc(
			"scannerd_slot_logs",
			"Number of log records of the current run of a slot",
			[]string{"instance", "kind"}, nil),
		processDesc: prometheus.NewDesc(
			"scannerd_process",
			"Live scanner processes",
			[]string{"instance", "kind", "run", "target", "state"}, nil),
		processCPUDesc: prometheus.NewDesc(
			"scannerd_process_cpu_percent",
			"CPU consumption of a scanner process in percent",
			[]string{"instance", "kind", "run", "target"}, nil),
		processMemoryDesc: prometheus.NewDesc(
			"scannerd_process_memory_bytes",
			"Resident memory of a scanner process in bytes",
			[]string{"instance", "kind", "run", "target"}, nil),
		processStatesDesc: prometheus.NewDesc(
			"scannerd_process_states",
			"Current number of scanner processes per state",
			[]string{"instance", "state"}, nil),
		upgradableDesc: prometheus.NewDesc(
			"scannerd_devices_upgradable",
			"Number of upgradable devices per snapshot",
			[]string{"instance", "kind"}, nil),
		upgradeRunningDesc: prometheus.NewDesc(
			"scannerd_devices_upgrading",
			"Number of devices flagged as being upgraded per snapshot",
			[]string{"instance", "kind"}, nil),
	}
}

func (c *slotsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.slotStateDesc
	ch <- c.slotRunsDesc
	ch <- c.slotDevicesDesc
	ch <- c.slotLogsDesc
	ch <- c.processDesc
	ch <- c.processCPUDesc
	ch <- c.processMemoryDesc
	ch <- c.processStatesDesc
	ch <- c.upgradableDesc
	ch <- c.upgradeRunningDesc
}

func (c *slotsCollector) Collect(ch chan<- prometheus.Metric) {
	for _, slot := range c.reader.Slots() {
		kind := string(slot.Kind)

		for _, state := range []session.State{session.StateIdle, session.StateRunning, session.StateFinished} {
			value := 0.0
			if slot.State == state {
				value = 1
			}

			ch <- prometheus.MustNewConstMetric(c.slotStateDesc, prometheus.GaugeValue, value, c.instance, kind, string(state))
		}

		ch <- prometheus.MustNewConstMetric(c.slotRunsDesc, prometheus.CounterValue, float64(slot.Runs), c.instance, kind)
		ch <- prometheus.MustNewConstMetric(c.slotLogsDesc, prometheus.GaugeValue, float64(len(slot.Logs)), c.instance, kind)

		if slot.Result == nil {
			continue
		}

		upgradable, upgrading := 0, 0
		for _, d := range slot.Result.Devices {
			if d.Upgradable {
				upgradable++
			}

			if d.UpgradeInProgress {
				upgrading++
			}
		}

		ch <- prometheus.MustNewConstMetric(c.slotDevicesDesc, prometheus.GaugeValue, float64(len(slot.Result.Devices)), c.instance, kind)

		if slot.Kind.Snapshots() {
			ch <- prometheus.MustNewConstMetric(c.upgradableDesc, prometheus.GaugeValue, float64(upgradable), c.instance, kind)
			ch <- prometheus.MustNewConstMetric(c.upgradeRunningDesc, prometheus.GaugeValue, float64(upgrading), c.instance, kind)
		}
	}

	states := map[string]float64{
		"failed":    0,
		"finished":  0,
		"finishing": 0,
		"killed":    0,
		"running":   0,
		"starting":  0,
	}

	for _, p := range c.reader.Processes() {
		kind := string(p.Kind)

		ch <- prometheus.MustNewConstMetric(c.processDesc, prometheus.GaugeValue, 1, c.instance, kind, p.RunID, p.Target, p.State)
		ch <- prometheus.MustNewConstMetric(c.processCPUDesc, prometheus.GaugeValue, p.CPU, c.instance, kind, p.RunID, p.Target)
		ch <- prometheus.MustNewConstMetric(c.processMemoryDesc, prometheus.GaugeValue, float64(p.Memory), c.instance, kind, p.RunID, p.Target)

		if _, ok := states[p.State]; ok {
			states[p.State]++
		}
	}

	for state, value := range states {
		ch <- prometheus.MustNewConstMetric(c.processStatesDesc, prometheus.GaugeValue, value, c.instance, state)
	}
}
