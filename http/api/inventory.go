package api

import "github.com/ob1/scannerd/inventory"

// Snapshot is the most recently stored scan or discovery result
type Snapshot struct {
	ID     uint64     `json:"id" format:"uint64"`
	Kind   string     `json:"kind"`
	Time   int64      `json:"ts" format:"int64"`
	Result ScanResult `json:"result"`
}

func (s *Snapshot) Unmarshal(snapshot inventory.Snapshot) {
	s.ID = snapshot.ID
	s.Kind = snapshot.Kind
	s.Time = snapshot.Time.Unix()
	s.Result.Unmarshal(snapshot.Result)
}

// InventoryDevice is a miner that has been seen by any scan or discovery
type InventoryDevice struct {
	Device
	FirstSeen int64 `json:"first_seen" format:"int64"`
	LastSeen  int64 `json:"last_seen" format:"int64"`
}

func (d *InventoryDevice) Unmarshal(device inventory.Device) {
	d.Device.Unmarshal(device.Device)
	d.FirstSeen = device.FirstSeen.Unix()
	d.LastSeen = device.LastSeen.Unix()
}
