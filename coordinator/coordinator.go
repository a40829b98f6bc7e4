// Package coordinator owns the scanner processes and the operation slots.
// It translates intents (scan, discover, upgrade, identify) into scanner
// invocations and feeds their output into the session.
//
// Scan and discovery share the scanner's network channel and exclude each
// other. Starting either interrupts both. An upgrade interrupts scan and
// discovery as well, but upgrades are never interrupted by anything other
// than StopAll. Concurrent upgrades form a batch that shares one run of the
// upgrade slot.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ob1/scannerd/decoder"
	"github.com/ob1/scannerd/event"
	"github.com/ob1/scannerd/log"
	"github.com/ob1/scannerd/process"
	"github.com/ob1/scannerd/scanner"
	"github.com/ob1/scannerd/session"

	"github.com/google/uuid"
)

// ErrUpgradeInProgress is returned if a device is already being upgraded.
var ErrUpgradeInProgress = errors.New("upgrade already in progress")

// ErrClosed is returned for operations on a closed coordinator.
var ErrClosed = errors.New("coordinator is closed")

// Inventory persists delivered device snapshots.
type Inventory interface {
	Store(kind string, result session.ScanResult) error
}

type Config struct {
	Binary      string              // Path to the ob1-scanner binary
	FirmwareDir string              // Directory with the generation 1 firmware archives
	Timeout     time.Duration       // Kill scans, upgrades and identifications after this duration, disabled if 0
	KillTimeout time.Duration       // Duration between SIGINT and SIGKILL
	MaxLogs     int                 // Max. number of log records per slot
	Credentials scanner.Credentials // Fills the empty fields of the credentials of a target, its SSH pair is always used
	Schedule    string              // Interval, cron expression or RFC3339 time for periodic rescans
	Filter      *scanner.Filter     // Filter for scheduled scans
	Inventory   Inventory
	Logger      log.Logger
}

// ProcessStatus is the status of a live scanner process.
type ProcessStatus struct {
	Kind   session.Kind
	RunID  string
	Target string
	process.Status
}

type Coordinator interface {
	// StartScan interrupts scan and discovery and starts a new scan. A nil
	// filter scans the local subnet.
	StartScan(filter *scanner.Filter) error

	// StartDiscovery interrupts scan and discovery and starts a mDNS discovery.
	StartDiscovery() error

	// StartUpgrade interrupts scan and discovery and starts an upgrade of the
	// target. Running upgrades are not affected. Duplicate upgrades of the
	// same device are not rejected, see UpgradeInProgress.
	StartUpgrade(target scanner.Target) error

	// UpgradeIfIdle starts an upgrade of the target like StartUpgrade, unless
	// the device is flagged as being upgraded. In that case it returns
	// ErrUpgradeInProgress.
	UpgradeIfIdle(target scanner.Target) error

	// UpgradeAll starts an upgrade for every upgradable device of the most
	// recent snapshot that is not already being upgraded. It returns the
	// addresses of the devices.
	UpgradeAll(creds scanner.Credentials) ([]string, error)

	// UpgradeInProgress returns whether the device is flagged as being upgraded.
	UpgradeInProgress(address string) bool

	// StartIdentify interrupts a running identification and lets the target
	// flash its LEDs.
	StartIdentify(target scanner.Target) error

	// StopAll interrupts every live process.
	StopAll()

	Slot(kind session.Kind) (session.Slot, error)
	Slots() []session.Slot

	// Processes returns the status of all live processes.
	Processes() []ProcessStatus

	// Events returns a channel with the slot events that pass the filters.
	Events(filters ...event.Filter) (<-chan event.Event, event.CancelFunc, error)

	// Alive returns ErrClosed after Close.
	Alive() error

	// Close stops all processes, waits for them to exit and releases the
	// event subscriptions.
	Close()
}

type handle struct {
	kind   session.Kind
	run    string
	target string
	proc   process.Process
}

type coordinator struct {
	binary      string
	firmwareDir string
	timeout     time.Duration
	killTimeout time.Duration
	credentials scanner.Credentials

	session   *session.Session
	events    *event.PubSub
	inventory Inventory

	procs map[session.Kind][]*handle
	batch struct {
		run  string
		live int
	}
	closed bool
	lock   sync.Mutex

	cancel       context.CancelFunc
	unsubscribe  event.CancelFunc
	wg           sync.WaitGroup
	logger       log.Logger
	decodeLogger log.Logger
}

var _ event.EventSource = &coordinator{}

func New(config Config) (Coordinator, error) {
	c := &coordinator{
		binary:      config.Binary,
		firmwareDir: config.FirmwareDir,
		timeout:     config.Timeout,
		killTimeout: config.KillTimeout,
		credentials: config.Credentials,
		inventory:   config.Inventory,
		procs:       map[session.Kind][]*handle{},
		logger:      config.Logger,
	}

	c.credentials.SSHAuthChecked = true

	if len(c.binary) == 0 {
		return nil, fmt.Errorf("no scanner binary given")
	}

	if c.logger == nil {
		c.logger = log.New("")
	}

	c.logger = c.logger.WithComponent("Coordinator")
	c.decodeLogger = c.logger.WithComponent("Decoder")

	var scheduler process.Scheduler
	if len(config.Schedule) != 0 {
		s, err := process.NewScheduler(config.Schedule)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", config.Schedule, err)
		}

		scheduler = s
	}

	c.events = event.NewPubSub()

	c.session = session.New(session.Config{
		Publisher: c.events,
		MaxLogs:   config.MaxLogs,
		Logger:    c.logger.WithComponent("Session"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	// Only results are of interest, log events would fill the queue
	ch, unsubscribe := c.events.Subscribe(func(e event.Event) bool {
		evt, ok := e.(*event.SlotEvent)
		return ok && evt.Type == event.SlotResult
	})
	c.unsubscribe = unsubscribe

	c.wg.Add(1)
	go c.observe(ctx, ch)

	if scheduler != nil {
		c.wg.Add(1)
		go c.rescan(ctx, scheduler, config.Filter)
	}

	return c, nil
}

func (c *coordinator) Close() {
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return
	}
	c.closed = true

	handles := []*handle{}
	for _, hs := range c.procs {
		handles = append(handles, hs...)
	}
	c.lock.Unlock()

	c.cancel()

	for _, h := range handles {
		h.proc.Stop(true)
	}

	c.unsubscribe()
	c.wg.Wait()

	c.events.Close()

	c.logger.Info().Log("Closed")
}

func (c *coordinator) Alive() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ErrClosed
	}

	return nil
}

func (c *coordinator) StartScan(filter *scanner.Filter) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.interrupt(session.KindScan, session.KindDiscovery)

	run := uuid.New().String()

	h, err := c.spawn(session.KindScan, run, "", scanner.ScanArgs(filter), c.timeout, func() {
		c.session.Start(session.KindScan, run)
	})
	if err != nil {
		return err
	}

	c.procs[session.KindScan] = []*handle{h}

	return nil
}

func (c *coordinator) StartDiscovery() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.interrupt(session.KindScan, session.KindDiscovery)

	run := uuid.New().String()

	// Discovery runs until it is interrupted
	h, err := c.spawn(session.KindDiscovery, run, "", scanner.DiscoveryArgs(), 0, func() {
		c.session.Start(session.KindDiscovery, run)
	})
	if err != nil {
		return err
	}

	c.procs[session.KindDiscovery] = []*handle{h}

	return nil
}

func (c *coordinator) target(target scanner.Target) scanner.Target {
	target.Credentials = target.Credentials.Merge(c.credentials)

	return target
}

func (c *coordinator) StartUpgrade(target scanner.Target) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ErrClosed
	}

	return c.startUpgrade(c.target(target))
}

func (c *coordinator) UpgradeIfIdle(target scanner.Target) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ErrClosed
	}

	if c.session.UpgradeInProgress(target.Host) {
		return ErrUpgradeInProgress
	}

	return c.startUpgrade(c.target(target))
}

func (c *coordinator) startUpgrade(target scanner.Target) error {
	if len(target.Host) == 0 {
		return fmt.Errorf("no host given")
	}

	c.interrupt(session.KindScan, session.KindDiscovery)

	join := c.batch.live > 0
	run := c.batch.run
	if !join {
		run = uuid.New().String()
	}

	generation := scanner.GenerationOf(target.Model)

	h, err := c.spawn(session.KindUpgrade, run, target.Host, scanner.UpgradeArgs(target, c.firmwareDir), c.timeout, func() {
		if !join {
			c.session.Start(session.KindUpgrade, run)
		}

		c.session.MarkUpgrade(target.Host)
		c.session.Log(session.KindUpgrade, run, session.LogRecord{
			Level:     "info",
			Message:   fmt.Sprintf("Upgrading %s (%s, %s)", target.Host, target.Model, generation),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	})
	if err != nil {
		return err
	}

	c.batch.run = run
	c.batch.live++
	c.procs[session.KindUpgrade] = append(c.procs[session.KindUpgrade], h)

	return nil
}

func (c *coordinator) UpgradeAll(creds scanner.Credentials) ([]string, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	_, snapshot, ok := c.session.Snapshot()
	if !ok {
		return []string{}, nil
	}

	started := []string{}
	errs := []error{}

	for _, d := range snapshot.Devices {
		if !d.Upgradable || d.UpgradeInProgress {
			continue
		}

		err := c.startUpgrade(c.target(scanner.Target{
			Host:        d.Address,
			Model:       d.Model,
			Credentials: creds,
		}))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Address, err))
			continue
		}

		started = append(started, d.Address)
	}

	return started, errors.Join(errs...)
}

func (c *coordinator) UpgradeInProgress(address string) bool {
	return c.session.UpgradeInProgress(address)
}

func (c *coordinator) StartIdentify(target scanner.Target) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ErrClosed
	}

	if len(target.Host) == 0 {
		return fmt.Errorf("no host given")
	}

	c.interrupt(session.KindIdentify)

	run := uuid.New().String()
	target = c.target(target)

	h, err := c.spawn(session.KindIdentify, run, target.Host, scanner.IdentifyArgs(target), c.timeout, func() {
		c.session.Start(session.KindIdentify, run)
	})
	if err != nil {
		return err
	}

	c.procs[session.KindIdentify] = []*handle{h}

	return nil
}

func (c *coordinator) StopAll() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.interrupt(session.Kinds...)
}

// interrupt sends SIGINT to the live processes of the kinds and detaches
// them. It doesn't wait for them to exit. Their remaining output and exit
// are still dispatched with their own run IDs.
func (c *coordinator) interrupt(kinds ...session.Kind) {
	for _, k := range kinds {
		for _, h := range c.procs[k] {
			c.logger.Info().WithFields(log.Fields{
				"kind":   h.kind,
				"run":    h.run,
				"target": h.target,
			}).Log("Interrupting")

			h.proc.Stop(false)
		}

		delete(c.procs, k)
	}
}

// spawn starts a scanner process. onStart is called after the process has
// been spawned and before any of its output is decoded. On error the slot
// is untouched.
func (c *coordinator) spawn(kind session.Kind, run, target string, args []string, timeout time.Duration, onStart func()) (*handle, error) {
	h := &handle{
		kind:   kind,
		run:    run,
		target: target,
	}

	fields := log.Fields{
		"kind": kind,
		"run":  run,
	}

	dec := decoder.New(decoder.Config{
		OnRecord: func(stream string, r decoder.Record) {
			c.dispatch(h, r)
		},
		Logger: c.decodeLogger.WithFields(fields),
	})

	proc, err := process.New(process.Config{
		Binary:      c.binary,
		Args:        args,
		Timeout:     timeout,
		KillTimeout: c.killTimeout,
		Decoder:     dec,
		OnStart:     onStart,
		OnExit: func(state string) {
			c.exited(h, state)
		},
		Logger: c.logger.WithComponent("Process").WithFields(fields),
	})
	if err != nil {
		return nil, err
	}

	h.proc = proc

	if err := proc.Start(); err != nil {
		c.logger.Warn().WithFields(fields).WithError(err).Log("Spawning scanner failed")
		return nil, fmt.Errorf("spawning %s: %w", kind, err)
	}

	return h, nil
}

// dispatch hands a decoded record to the session. Results of upgrades are
// kept as log lines because the slot is shared by the whole batch.
func (c *coordinator) dispatch(h *handle, r decoder.Record) {
	switch r.Kind {
	case decoder.KindLog:
		c.session.Log(h.kind, h.run, session.NewLogRecord(r.Log))
	case decoder.KindResult:
		if h.kind == session.KindUpgrade {
			c.session.Log(h.kind, h.run, session.LogRecord{
				Level:     "info",
				Message:   fmt.Sprintf("Upgrade of %s reported %d devices", h.target, len(r.Result.Devices)),
				Timestamp: time.Now().Format(time.RFC3339),
			})
			return
		}

		c.session.Result(h.kind, h.run, r.Result)
	}
}

// exited is called from the process after it exited.
func (c *coordinator) exited(h *handle, state string) {
	c.lock.Lock()

	hs := c.procs[h.kind]
	for i, x := range hs {
		if x == h {
			c.procs[h.kind] = append(hs[:i:i], hs[i+1:]...)
			break
		}
	}

	last := true
	if h.kind == session.KindUpgrade && h.run == c.batch.run {
		c.batch.live--
		last = c.batch.live == 0
	}

	c.lock.Unlock()

	c.logger.Info().WithFields(log.Fields{
		"kind":   h.kind,
		"run":    h.run,
		"target": h.target,
		"state":  state,
	}).Log("Exited")

	if h.kind == session.KindUpgrade {
		c.session.Log(h.kind, h.run, session.LogRecord{
			Level:     "info",
			Message:   fmt.Sprintf("Upgrade of %s exited (%s)", h.target, state),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	if last {
		c.session.Exit(h.kind, h.run, state)
	}
}

func (c *coordinator) Slot(kind session.Kind) (session.Slot, error) {
	return c.session.Slot(kind)
}

func (c *coordinator) Slots() []session.Slot {
	return c.session.Slots()
}

func (c *coordinator) Processes() []ProcessStatus {
	c.lock.Lock()
	handles := []*handle{}
	for _, k := range session.Kinds {
		handles = append(handles, c.procs[k]...)
	}
	c.lock.Unlock()

	status := []ProcessStatus{}
	for _, h := range handles {
		status = append(status, ProcessStatus{
			Kind:   h.kind,
			RunID:  h.run,
			Target: h.target,
			Status: h.proc.Status(),
		})
	}

	return status
}

func (c *coordinator) Events(filters ...event.Filter) (<-chan event.Event, event.CancelFunc, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return nil, nil, ErrClosed
	}

	ch, cancel := c.events.Subscribe(filters...)

	return ch, cancel, nil
}

// observe persists delivered snapshots and appends a summary to the log of
// the slot.
func (c *coordinator) observe(ctx context.Context, ch <-chan event.Event) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}

			evt, ok := e.(*event.SlotEvent)
			if !ok || evt.Type != event.SlotResult {
				continue
			}

			kind, err := session.ParseKind(evt.Kind)
			if err != nil || !kind.Snapshots() {
				continue
			}

			slot, err := c.session.Slot(kind)
			if err != nil || slot.RunID != evt.RunID || slot.Result == nil {
				continue
			}

			if c.inventory != nil {
				if err := c.inventory.Store(evt.Kind, *slot.Result); err != nil {
					c.logger.Warn().WithError(err).Log("Storing inventory failed")
				}
			}

			c.logger.Info().WithFields(log.Fields{
				"kind": evt.Kind,
				"run":  evt.RunID,
			}).Log("%s", summary(slot.Result.Devices))
		}
	}
}

func summary(devices []session.Device) string {
	if len(devices) == 0 {
		return "No devices found"
	}

	entries := make([]string, 0, len(devices))
	for _, d := range devices {
		entries = append(entries, d.Address+"/"+d.Model+"/"+d.MacAddress)
	}

	return fmt.Sprintf("Found %d devices: %s", len(devices), strings.Join(entries, ", "))
}

// rescan starts a scan whenever the schedule is due, unless a scan is
// already running.
func (c *coordinator) rescan(ctx context.Context, scheduler process.Scheduler, filter *scanner.Filter) {
	defer c.wg.Done()

	for {
		next, err := scheduler.Next()
		if err != nil {
			c.logger.Info().Log("No further scans scheduled")
			return
		}

		c.logger.Debug().Log("Next scheduled scan in %s", next)

		select {
		case <-ctx.Done():
			return
		case <-time.After(next):
		}

		if c.session.State(session.KindScan) == session.StateRunning {
			continue
		}

		if err := c.StartScan(filter); err != nil {
			c.logger.Warn().WithError(err).Log("Scheduled scan failed")
		}
	}
}
