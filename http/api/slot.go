package api

import (
	"github.com/ob1/scannerd/coordinator"
	"github.com/ob1/scannerd/session"
)

// SlotLog is a log record of a scanner process
type SlotLog struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Device is a miner found by a scan or a discovery
type Device struct {
	Address                 string `json:"address" jsonschema:"required"`
	Model                   string `json:"model"`
	MacAddress              string `json:"macAddress"`
	FirmwareVersion         string `json:"firmwareVersion"`
	FirmwareUpdateAvailable string `json:"firmwareUpdateAvailable,omitempty"`
	Generation              int    `json:"generation" format:"int"`
	Upgradable              bool   `json:"upgradable"`
	UpgradeInProgress       bool   `json:"upgradeInProgress"`
}

func (d *Device) Unmarshal(s session.Device) {
	d.Address = s.Address
	d.Model = s.Model
	d.MacAddress = s.MacAddress
	d.FirmwareVersion = s.FirmwareVersion
	d.FirmwareUpdateAvailable = s.FirmwareUpdateAvailable
	d.Generation = s.Generation
	d.Upgradable = s.Upgradable
	d.UpgradeInProgress = s.UpgradeInProgress
}

// ScanResult is the device snapshot of a slot
type ScanResult struct {
	Success bool     `json:"success"`
	Devices []Device `json:"devices"`
	Time    int64    `json:"ts" format:"int64"`
}

func (r *ScanResult) Unmarshal(s session.ScanResult) {
	r.Success = s.Success
	r.Time = s.Time.Unix()
	r.Devices = make([]Device, len(s.Devices))

	for i, d := range s.Devices {
		r.Devices[i].Unmarshal(d)
	}
}

// Slot is the state of one kind of operation
type Slot struct {
	Kind      string      `json:"kind" jsonschema:"enum=scan,enum=mdnsDiscovery,enum=firmwareUpgrade,enum=identify"`
	State     string      `json:"state" jsonschema:"enum=idle,enum=running,enum=finished"`
	RunID     string      `json:"run_id"`
	Logs      []SlotLog   `json:"logs"`
	Result    *ScanResult `json:"result,omitempty"`
	Runs      uint64      `json:"runs" format:"uint64"`
	UpdatedAt int64       `json:"updated_at" format:"int64"`
}

func (s *Slot) Unmarshal(slot session.Slot) {
	s.Kind = string(slot.Kind)
	s.State = string(slot.State)
	s.RunID = slot.RunID
	s.Runs = slot.Runs
	s.UpdatedAt = slot.Updated.Unix()
	s.Logs = make([]SlotLog, len(slot.Logs))

	for i, l := range slot.Logs {
		s.Logs[i] = SlotLog{
			Level:     l.Level,
			Message:   l.Message,
			Timestamp: l.Timestamp,
		}
	}

	s.Result = nil

	if slot.Result != nil {
		s.Result = &ScanResult{}
		s.Result.Unmarshal(*slot.Result)
	}
}

// Process is a live scanner process
type Process struct {
	Kind     string   `json:"kind"`
	RunID    string   `json:"run_id"`
	Target   string   `json:"target,omitempty"`
	PID      int32    `json:"pid" format:"int32"`
	State    string   `json:"state"`
	Reason   string   `json:"reason,omitempty"`
	Runtime  int64    `json:"runtime_seconds" format:"int64"`
	Command  []string `json:"command"`
	CPU      float64  `json:"cpu_usage" swaggertype:"number" jsonschema:"type=number"`
	Memory   uint64   `json:"memory_bytes" format:"uint64"`
	Updated  int64    `json:"updated_at" format:"int64"`
	Duration float64  `json:"duration_seconds" swaggertype:"number" jsonschema:"type=number"`
}

func (p *Process) Unmarshal(s coordinator.ProcessStatus) {
	p.Kind = string(s.Kind)
	p.RunID = s.RunID
	p.Target = s.Target
	p.PID = s.PID
	p.State = s.State
	p.Reason = s.Reason
	p.Runtime = int64(s.Duration.Seconds())
	p.Command = append([]string{}, s.CommandArgs...)
	p.CPU = s.CPU
	p.Memory = s.Memory
	p.Updated = s.Time.Unix()
	p.Duration = s.Duration.Seconds()
}
