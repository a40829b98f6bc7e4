// Package inventory persists device snapshots in a bbolt database such that
// the last known fleet is available after a restart.
package inventory

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ob1/scannerd/encoding/json"
	"github.com/ob1/scannerd/log"
	"github.com/ob1/scannerd/session"

	"go.etcd.io/bbolt"
)

var (
	bucketSnapshots = []byte("snapshots")
	bucketDevices   = []byte("devices")
)

// ErrNotFound is returned if no snapshot has been stored yet.
var ErrNotFound = errors.New("no snapshot found")

// DefaultKeep is the default number of snapshots to keep.
const DefaultKeep = 100

// Snapshot is a stored scan or discovery result.
type Snapshot struct {
	ID     uint64             `json:"id"`
	Kind   string             `json:"kind"`
	Time   time.Time          `json:"time"`
	Result session.ScanResult `json:"result"`
}

// Device is the last known state of a device.
type Device struct {
	session.Device
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

type Inventory interface {
	// Store appends the result as a new snapshot and updates the devices.
	Store(kind string, result session.ScanResult) error

	// Last returns the most recently stored snapshot.
	Last() (Snapshot, error)

	// Devices returns all devices ever seen, ordered by address.
	Devices() ([]Device, error)

	Close() error
}

type Config struct {
	Path   string // Path to the database file
	Keep   int    // Number of snapshots to keep
	Logger log.Logger
}

type inventory struct {
	db     *bbolt.DB
	keep   int
	logger log.Logger
}

func New(config Config) (Inventory, error) {
	i := &inventory{
		keep:   config.Keep,
		logger: config.Logger,
	}

	if i.keep <= 0 {
		i.keep = DefaultKeep
	}

	if i.logger == nil {
		i.logger = log.New("Inventory")
	}

	if len(config.Path) == 0 {
		return nil, fmt.Errorf("no database path given")
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bbolt.Open(config.Path, 0600, &bbolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketSnapshots, bucketDevices} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt: %w", err)
	}

	i.db = db

	i.logger.Debug().WithField("path", config.Path).Log("Opened")

	return i, nil
}

func (i *inventory) Close() error {
	return i.db.Close()
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)

	return b
}

func (i *inventory) Store(kind string, result session.ScanResult) error {
	now := time.Now()

	err := i.db.Update(func(tx *bbolt.Tx) error {
		snapshots := tx.Bucket(bucketSnapshots)

		id, err := snapshots.NextSequence()
		if err != nil {
			return err
		}

		data, err := json.Marshal(Snapshot{
			ID:     id,
			Kind:   kind,
			Time:   now,
			Result: result,
		})
		if err != nil {
			return err
		}

		if err := snapshots.Put(itob(id), data); err != nil {
			return err
		}

		// Drop the oldest snapshots
		if n := snapshots.Stats().KeyN + 1 - i.keep; n > 0 {
			c := snapshots.Cursor()
			for k, _ := c.First(); k != nil && n > 0; k, _ = c.Next() {
				if err := c.Delete(); err != nil {
					return err
				}
				n--
			}
		}

		devices := tx.Bucket(bucketDevices)

		for _, d := range result.Devices {
			device := Device{
				FirstSeen: now,
			}

			if data := devices.Get([]byte(d.Address)); data != nil {
				if err := json.Unmarshal(data, &device); err != nil {
					i.logger.Warn().WithError(json.FormatError(data, err)).Log("Dropping invalid device %s", d.Address)
					device.FirstSeen = now
				}
			}

			device.Device = d
			device.Device.UpgradeInProgress = false
			device.LastSeen = now

			data, err := json.Marshal(device)
			if err != nil {
				return err
			}

			if err := devices.Put([]byte(d.Address), data); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("bolt: %w", err)
	}

	return nil
}

func (i *inventory) Last() (Snapshot, error) {
	s := Snapshot{}

	err := i.db.View(func(tx *bbolt.Tx) error {
		k, data := tx.Bucket(bucketSnapshots).Cursor().Last()
		if k == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(data, &s); err != nil {
			return json.FormatError(data, err)
		}

		return nil
	})

	return s, err
}

func (i *inventory) Devices() ([]Device, error) {
	devices := []Device{}

	err := i.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDevices).ForEach(func(k, v []byte) error {
			d := Device{}
			if err := json.Unmarshal(v, &d); err != nil {
				return json.FormatError(v, err)
			}

			devices = append(devices, d)

			return nil
		})
	})

	sort.Slice(devices, func(a, b int) bool {
		return devices[a].Address < devices[b].Address
	})

	return devices, err
}
