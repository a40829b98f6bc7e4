package session

import (
	"fmt"
	"time"

	"github.com/ob1/scannerd/decoder"
	"github.com/ob1/scannerd/scanner"
)

// Kind is the operation kind of a slot.
type Kind string

const (
	KindScan      Kind = "scan"
	KindDiscovery Kind = "mdnsDiscovery"
	KindUpgrade   Kind = "firmwareUpgrade"
	KindIdentify  Kind = "identify"
)

// Kinds are all slot kinds in a stable order.
var Kinds = []Kind{KindScan, KindDiscovery, KindUpgrade, KindIdentify}

// ErrUnknownKind is returned for a kind that has no slot.
var ErrUnknownKind = fmt.Errorf("unknown slot kind")

func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}

	return "", fmt.Errorf("%s: %w", name, ErrUnknownKind)
}

// Continuous returns whether a finished slot of this kind still accepts
// results. mDNS discovery reports the growing list of miners repeatedly.
func (k Kind) Continuous() bool {
	return k == KindDiscovery
}

// Snapshots returns whether results of this kind are device snapshots
// that upgrades are marked in.
func (k Kind) Snapshots() bool {
	return k == KindScan || k == KindDiscovery
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateFinished State = "finished"
)

type LogRecord struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func NewLogRecord(r decoder.LogRecord) LogRecord {
	return LogRecord{
		Level:     r.Level,
		Message:   r.Message,
		Timestamp: r.Timestamp,
	}
}

type Device struct {
	Address                 string `json:"address"`
	Model                   string `json:"model"`
	MacAddress              string `json:"macAddress"`
	FirmwareVersion         string `json:"firmwareVersion"`
	FirmwareUpdateAvailable string `json:"firmwareUpdateAvailable,omitempty"`
	Generation              int    `json:"generation"`
	Upgradable              bool   `json:"upgradable"`
	UpgradeInProgress       bool   `json:"upgradeInProgress"`
}

func NewDevice(d scanner.Device) Device {
	return Device{
		Address:                 d.IP,
		Model:                   d.Model,
		MacAddress:              d.MAC,
		FirmwareVersion:         d.FirmwareVersion(),
		FirmwareUpdateAvailable: d.FirmwareUpdate,
		Generation:              int(d.Generation()),
		Upgradable:              d.Upgradable(),
	}
}

// ScanResult is a full snapshot of the devices found. Devices is never nil.
type ScanResult struct {
	Success bool      `json:"success"`
	Devices []Device  `json:"devices"`
	Time    time.Time `json:"time"`
}

func NewScanResult(r decoder.ScanResult) ScanResult {
	s := ScanResult{
		Success: r.Success,
		Devices: make([]Device, 0, len(r.Devices)),
		Time:    time.Now(),
	}

	for _, d := range r.Devices {
		s.Devices = append(s.Devices, NewDevice(d))
	}

	return s
}

func (r *ScanResult) clone() *ScanResult {
	if r == nil {
		return nil
	}

	c := *r
	c.Devices = make([]Device, len(r.Devices))
	copy(c.Devices, r.Devices)

	return &c
}

// Slot is the state of one operation kind.
type Slot struct {
	Kind    Kind        `json:"kind"`
	State   State       `json:"state"`
	RunID   string      `json:"run_id"`
	Logs    []LogRecord `json:"logs"`
	Result  *ScanResult `json:"result"`
	Runs    uint64      `json:"runs"`
	Updated time.Time   `json:"updated_at"`
}

func (s *Slot) clone() Slot {
	c := *s
	c.Logs = make([]LogRecord, len(s.Logs))
	copy(c.Logs, s.Logs)
	c.Result = s.Result.clone()

	return c
}
