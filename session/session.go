// Package session reduces process lifecycle events and decoded records into
// the state of the operation slots. There is one slot per kind, created in
// the idle state and reset in place for every new run.
//
// Every change is tagged with a run ID. Changes for a run other than the
// current run of the slot are dropped, such that a superseded process can't
// touch the state of its successor.
package session

import (
	"sync"
	"time"

	"github.com/ob1/scannerd/decoder"
	"github.com/ob1/scannerd/event"
	"github.com/ob1/scannerd/log"
)

// Publisher receives the events of all slot transitions.
type Publisher interface {
	Publish(e event.Event) error
}

type Config struct {
	Publisher Publisher
	MaxLogs   int // Max. number of log records per slot, unlimited if 0
	Logger    log.Logger
}

type Session struct {
	slots   map[Kind]*Slot
	latest  Kind // Kind of the most recently delivered snapshot
	maxLogs int
	lock    sync.RWMutex

	publisher Publisher
	logger    log.Logger
}

func New(config Config) *Session {
	s := &Session{
		slots:     map[Kind]*Slot{},
		maxLogs:   config.MaxLogs,
		publisher: config.Publisher,
		logger:    config.Logger,
	}

	if s.logger == nil {
		s.logger = log.New("Session")
	}

	now := time.Now()

	for _, k := range Kinds {
		s.slots[k] = &Slot{
			Kind:    k,
			State:   StateIdle,
			Logs:    []LogRecord{},
			Updated: now,
		}
	}

	return s
}

func (s *Session) publish(e event.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(e); err != nil {
		s.logger.Debug().WithError(err).Log("Publishing event failed")
	}
}

// current returns the slot if run is its current run.
func (s *Session) current(kind Kind, run string) *Slot {
	slot, ok := s.slots[kind]
	if !ok || len(run) == 0 || slot.RunID != run {
		return nil
	}

	return slot
}

// Start begins a new run of the slot. Logs and result of the previous run
// are cleared. Restarting a running slot passes through idle.
func (s *Session) Start(kind Kind, run string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	slot, ok := s.slots[kind]
	if !ok {
		return ErrUnknownKind
	}

	if slot.State == StateRunning {
		slot.State = StateIdle
		s.publish(event.NewSlotStateEvent(string(kind), slot.RunID, string(StateRunning), string(StateIdle)))
	}

	from := slot.State

	slot.State = StateRunning
	slot.RunID = run
	slot.Logs = []LogRecord{}
	slot.Result = nil
	slot.Runs++
	slot.Updated = time.Now()

	s.logger.Debug().WithFields(log.Fields{
		"kind": kind,
		"run":  run,
	}).Log("Started")

	s.publish(event.NewSlotStateEvent(string(kind), run, string(from), string(StateRunning)))

	return nil
}

// Log appends a log record to the slot regardless of its state. It returns
// false if the run is not the current run.
func (s *Session) Log(kind Kind, run string, r LogRecord) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	slot := s.current(kind, run)
	if slot == nil {
		return false
	}

	slot.Logs = append(slot.Logs, r)
	if s.maxLogs > 0 && len(slot.Logs) > s.maxLogs {
		slot.Logs = slot.Logs[len(slot.Logs)-s.maxLogs:]
	}
	slot.Updated = time.Now()

	s.publish(event.NewSlotLogEvent(string(kind), run, r.Level, r.Message))

	return true
}

// Result replaces the snapshot of a running slot and finishes it. A finished
// slot of a continuous kind keeps accepting snapshots. Any other result is
// ignored. It returns whether the snapshot has been replaced.
func (s *Session) Result(kind Kind, run string, r decoder.ScanResult) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	slot := s.current(kind, run)
	if slot == nil {
		return false
	}

	from := slot.State
	result := NewScanResult(r)

	switch {
	case from == StateRunning:
	case from == StateFinished && kind.Continuous():
		// Marks survive incremental updates of the same discovery run
		if slot.Result != nil {
			marked := map[string]struct{}{}
			for _, d := range slot.Result.Devices {
				if d.UpgradeInProgress {
					marked[d.Address] = struct{}{}
				}
			}

			for i, d := range result.Devices {
				if _, ok := marked[d.Address]; ok {
					result.Devices[i].UpgradeInProgress = true
				}
			}
		}
	default:
		return false
	}

	slot.State = StateFinished
	slot.Result = &result
	slot.Updated = time.Now()

	if kind.Snapshots() {
		s.latest = kind
	}

	s.logger.Debug().WithFields(log.Fields{
		"kind":    kind,
		"run":     run,
		"devices": len(result.Devices),
	}).Log("Result")

	s.publish(event.NewSlotResultEvent(string(kind), run, string(from), len(result.Devices)))

	return true
}

// Exit handles the exit of the process of a run. A running slot without a
// result finishes with an empty device list. It returns whether the slot
// has been finished by this call.
func (s *Session) Exit(kind Kind, run string, state string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	slot := s.current(kind, run)
	if slot == nil {
		return false
	}

	from := slot.State

	if from != StateRunning {
		s.publish(event.NewSlotExitEvent(string(kind), run, state, string(from), string(from)))
		return false
	}

	slot.State = StateFinished
	slot.Result = &ScanResult{
		Success: false,
		Devices: []Device{},
		Time:    time.Now(),
	}
	slot.Updated = time.Now()

	s.logger.Debug().WithFields(log.Fields{
		"kind":  kind,
		"run":   run,
		"state": state,
	}).Log("Exited without result")

	s.publish(event.NewSlotExitEvent(string(kind), run, state, string(from), string(StateFinished)))

	return true
}

// MarkUpgrade flags the device with the address in the most recently
// delivered scan or discovery snapshot as being upgraded. The flag is
// cleared by the next snapshot. It returns false if there's no such device.
func (s *Session) MarkUpgrade(address string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	slot, ok := s.slots[s.latest]
	if !ok || slot.Result == nil {
		return false
	}

	for i, d := range slot.Result.Devices {
		if d.Address != address {
			continue
		}

		slot.Result.Devices[i].UpgradeInProgress = true
		slot.Updated = time.Now()

		s.publish(event.NewSlotUpgradeEvent(string(slot.Kind), address))

		return true
	}

	return false
}

// UpgradeInProgress returns whether the device with the address is flagged
// in the most recent snapshot.
func (s *Session) UpgradeInProgress(address string) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	slot, ok := s.slots[s.latest]
	if !ok || slot.Result == nil {
		return false
	}

	for _, d := range slot.Result.Devices {
		if d.Address == address {
			return d.UpgradeInProgress
		}
	}

	return false
}

// Snapshot returns the most recently delivered scan or discovery snapshot.
func (s *Session) Snapshot() (Kind, ScanResult, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	slot, ok := s.slots[s.latest]
	if !ok || slot.Result == nil {
		return "", ScanResult{}, false
	}

	return slot.Kind, *slot.Result.clone(), true
}

// Slot returns a copy of the slot of the kind.
func (s *Session) Slot(kind Kind) (Slot, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	slot, ok := s.slots[kind]
	if !ok {
		return Slot{}, ErrUnknownKind
	}

	return slot.clone(), nil
}

// Slots returns a copy of all slots in the order of Kinds.
func (s *Session) Slots() []Slot {
	s.lock.RLock()
	defer s.lock.RUnlock()

	slots := make([]Slot, 0, len(Kinds))
	for _, k := range Kinds {
		slots = append(slots, s.slots[k].clone())
	}

	return slots
}

// RunID returns the current run of the slot.
func (s *Session) RunID(kind Kind) string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	slot, ok := s.slots[kind]
	if !ok {
		return ""
	}

	return slot.RunID
}

// State returns the state of the slot.
func (s *Session) State(kind Kind) State {
	s.lock.RLock()
	defer s.lock.RUnlock()

	slot, ok := s.slots[kind]
	if !ok {
		return ""
	}

	return slot.State
}
