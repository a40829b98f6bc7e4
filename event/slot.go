package event

import (
	"time"
)

// Slot event types.
const (
	SlotStart   = "start"
	SlotReset   = "reset"
	SlotLog     = "log"
	SlotResult  = "result"
	SlotExit    = "exit"
	SlotUpgrade = "upgrade"
)

// SlotEvent describes a change of an operation slot. Kind and RunID
// identify the slot and the run the change belongs to.
type SlotEvent struct {
	Type      string
	Kind      string
	RunID     string
	From      string
	To        string
	Level     string
	Message   string
	Address   string
	Devices   int
	Timestamp time.Time
}

func (e *SlotEvent) Clone() Event {
	evt := *e

	return &evt
}

func NewSlotStateEvent(kind, runid, from, to string) *SlotEvent {
	t := SlotStart
	if to == "idle" {
		t = SlotReset
	}

	return &SlotEvent{
		Type:      t,
		Kind:      kind,
		RunID:     runid,
		From:      from,
		To:        to,
		Timestamp: time.Now(),
	}
}

func NewSlotLogEvent(kind, runid, level, message string) *SlotEvent {
	return &SlotEvent{
		Type:      SlotLog,
		Kind:      kind,
		RunID:     runid,
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func NewSlotResultEvent(kind, runid, from string, devices int) *SlotEvent {
	return &SlotEvent{
		Type:      SlotResult,
		Kind:      kind,
		RunID:     runid,
		From:      from,
		To:        "finished",
		Devices:   devices,
		Timestamp: time.Now(),
	}
}

// NewSlotExitEvent reports the exit of a process. State is the exit state
// of the process, to is the state of the slot afterwards.
func NewSlotExitEvent(kind, runid, state, from, to string) *SlotEvent {
	return &SlotEvent{
		Type:      SlotExit,
		Kind:      kind,
		RunID:     runid,
		From:      from,
		To:        to,
		Message:   state,
		Timestamp: time.Now(),
	}
}

func NewSlotUpgradeEvent(kind, address string) *SlotEvent {
	return &SlotEvent{
		Type:      SlotUpgrade,
		Kind:      kind,
		Address:   address,
		Timestamp: time.Now(),
	}
}
