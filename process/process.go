// Package process is a wrapper of exec.Cmd for controlling a scanner process.
// Both stdout and stderr are captured and handed to a decoder. A process is
// stopped with SIGINT first and killed if it doesn't exit in time.
package process

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ob1/scannerd/decoder"
	"github.com/ob1/scannerd/log"

	psprocess "github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sync/errgroup"
)

// Process represents a process and ways to control it
// and to extract information.
type Process interface {
	// Status returns the current status of this process
	Status() Status

	// Start starts the process. The error of spawning the
	// binary is returned. A process can only be started once.
	Start() error

	// Stop stops the process. If wait is true, Stop returns after
	// the process exited.
	Stop(wait bool) error

	// Kill stops the process and records the reason.
	Kill(wait bool, reason string) error

	// IsRunning returns whether the process is currently
	// running or not.
	IsRunning() bool
}

// DefaultKillTimeout is the time between SIGINT and SIGKILL.
const DefaultKillTimeout = 5 * time.Second

// Config is the configuration of a process
type Config struct {
	Binary        string                // Path to the scanner binary.
	Args          []string              // List of arguments for the binary.
	Timeout       time.Duration         // Kill the process after this duration. Disabled if 0.
	KillTimeout   time.Duration         // Duration between SIGINT and SIGKILL.
	Decoder       decoder.Decoder       // A decoder for the output of the process.
	OnStart       func()                // A callback which is called after the process started and before its output is read.
	OnExit        func(state string)    // A callback which is called after the process exited with the exit state.
	OnStateChange func(from, to string) // A callback which is called after a state changed.
	Logger        log.Logger
}

// Status represents the current status of a process
type Status struct {
	PID         int32         // Last known process ID, -1 if not running
	State       string        // State is the current state of the process. See stateType for the known states.
	Reason      string        // Reason is why the process has been killed, if it has been.
	Duration    time.Duration // Duration is the time since the last change of the state
	Time        time.Time     // Time is the time of the last change of the state
	CommandArgs []string      // Command arguments
	CPU         float64       // CPU consumption in percent, only while running
	Memory      uint64        // Resident memory in bytes, only while running
}

// States
//
// finished - Process has not been started or exited normally
//
//	starting - if process has been started
//
// starting - Process is about to start
//
//	running - if process could be started
//	failed - if process couldn't be started (e.g. binary not found)
//
// running - Process is running
//
//	finished - if process exited normally
//	finishing - if process has been actively stopped
//	failed - if process exited with a non-zero exit code
//	killed - if process has been killed by a signal
//
// finishing - Process has been actively stopped and will be killed
//
//	finished - if process exited normally after SIGINT
//	failed - if process exited with a non-zero exit code after SIGINT
//	killed - if process has been killed by a signal
type stateType string

const (
	stateFinished  stateType = "finished"
	stateStarting  stateType = "starting"
	stateRunning   stateType = "running"
	stateFinishing stateType = "finishing"
	stateFailed    stateType = "failed"
	stateKilled    stateType = "killed"
)

// String returns a string representation of the state
func (s stateType) String() string {
	return string(s)
}

// IsRunning returns whether the state is representing a running state
func (s stateType) IsRunning() bool {
	if s == stateStarting || s == stateRunning || s == stateFinishing {
		return true
	}

	return false
}

var transitions = map[stateType][]stateType{
	stateFinished:  {stateStarting},
	stateStarting:  {stateRunning, stateFailed},
	stateRunning:   {stateFinished, stateFinishing, stateFailed, stateKilled},
	stateFinishing: {stateFinished, stateFailed, stateKilled},
}

type process struct {
	binary      string
	args        []string
	cmd         *exec.Cmd
	pid         atomic.Int32
	started     atomic.Bool
	stdout      io.ReadCloser
	stderr      io.ReadCloser
	decoder     decoder.Decoder
	timeout     time.Duration
	killTimeout time.Duration
	state       struct {
		state stateType
		time  time.Time
		lock  sync.RWMutex
	}
	stopTimer      *time.Timer
	stopTimerLock  sync.Mutex
	stopReason     string
	stopReasonLock sync.Mutex
	killTimer      *time.Timer
	killTimerLock  sync.Mutex
	exited         chan struct{}
	logger         log.Logger
	debuglogger    log.Logger
	callbacks      struct {
		onStart       func()
		onExit        func(state string)
		onStateChange func(from, to string)
	}
}

var _ Process = &process{}

// New creates a new process wrapper
func New(config Config) (Process, error) {
	p := &process{
		binary:      config.Binary,
		decoder:     config.Decoder,
		timeout:     config.Timeout,
		killTimeout: config.KillTimeout,
		logger:      config.Logger,
		exited:      make(chan struct{}),
	}

	p.pid.Store(-1)

	// This is a loose check on purpose. If the e.g. the binary
	// doesn't exist or it is not executable, Start will fail.
	if len(p.binary) == 0 {
		return nil, fmt.Errorf("no valid binary given")
	}

	p.args = make([]string, len(config.Args))
	copy(p.args, config.Args)

	if p.decoder == nil {
		p.decoder = decoder.New(decoder.Config{})
	}

	if p.killTimeout <= 0 {
		p.killTimeout = DefaultKillTimeout
	}

	if p.logger == nil {
		p.logger = log.New("Process")
	}

	p.debuglogger = p.logger.WithFields(log.Fields{
		"binary": p.binary,
		"args":   p.args,
	})

	p.callbacks.onStart = config.OnStart
	p.callbacks.onExit = config.OnExit
	p.callbacks.onStateChange = config.OnStateChange

	p.initState(stateFinished)

	p.debuglogger.Debug().Log("Created")

	return p, nil
}

func (p *process) initState(state stateType) {
	p.state.lock.Lock()
	defer p.state.lock.Unlock()

	p.state.state = state
	p.state.time = time.Now()
}

// setState sets a new state. It also checks if the transition
// of the current state to the new state is allowed. If not,
// the current state will not be changed. It returns the previous
// state or an error
func (p *process) setState(state stateType) (stateType, error) {
	p.state.lock.Lock()

	prevState := p.state.state

	if prevState == state {
		p.state.lock.Unlock()
		return prevState, nil
	}

	allowed := false
	for _, s := range transitions[prevState] {
		if s == state {
			allowed = true
			break
		}
	}

	if !allowed {
		p.state.lock.Unlock()
		return "", fmt.Errorf("can't change from state %s to %s", prevState, state)
	}

	p.state.state = state
	p.state.time = time.Now()
	p.state.lock.Unlock()

	if p.callbacks.onStateChange != nil {
		p.callbacks.onStateChange(prevState.String(), state.String())
	}

	return prevState, nil
}

func (p *process) getState() stateType {
	p.state.lock.RLock()
	defer p.state.lock.RUnlock()

	return p.state.state
}

func (p *process) isRunning() bool {
	return p.getState().IsRunning()
}

// Status returns the current status of the process
func (p *process) Status() Status {
	p.state.lock.RLock()
	stateTime := p.state.time
	state := p.state.state
	p.state.lock.RUnlock()

	p.stopReasonLock.Lock()
	reason := p.stopReason
	p.stopReasonLock.Unlock()

	s := Status{
		PID:      p.pid.Load(),
		State:    state.String(),
		Reason:   reason,
		Duration: time.Since(stateTime),
		Time:     stateTime,
	}

	s.CommandArgs = make([]string, len(p.args))
	copy(s.CommandArgs, p.args)

	if state == stateRunning && s.PID > 0 {
		if proc, err := psprocess.NewProcess(s.PID); err == nil {
			if cpu, err := proc.CPUPercent(); err == nil {
				s.CPU = cpu
			}

			if mem, err := proc.MemoryInfo(); err == nil {
				s.Memory = mem.RSS
			}
		}
	}

	return s
}

// IsRunning returns whether the process is considered running
func (p *process) IsRunning() bool {
	return p.isRunning()
}

// Start will spawn the process. The OnStart callback is called before
// the output of the process is read. On error, no callback is called.
func (p *process) Start() error {
	if p.started.Swap(true) {
		return fmt.Errorf("process has already been started")
	}

	err := p.start()
	if err != nil {
		p.debuglogger.WithFields(log.Fields{
			"state": p.getState().String(),
			"error": err,
		}).Debug().Log("Starting failed")
	}

	return err
}

func (p *process) start() error {
	var err error

	p.logger.Info().Log("Starting")

	p.setState(stateStarting)

	p.cmd = exec.Command(p.binary, p.args...)
	p.cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	p.cmd.Env = []string{}

	p.stdout, err = p.cmd.StdoutPipe()
	if err != nil {
		p.setState(stateFailed)
		p.logger.WithError(err).Error().Log("Command failed")
		close(p.exited)

		return err
	}

	p.stderr, err = p.cmd.StderrPipe()
	if err != nil {
		p.setState(stateFailed)
		p.logger.WithError(err).Error().Log("Command failed")
		close(p.exited)

		return err
	}

	if err := p.cmd.Start(); err != nil {
		p.setState(stateFailed)
		p.logger.WithError(err).Error().Log("Command failed")
		close(p.exited)

		return err
	}

	p.pid.Store(int32(p.cmd.Process.Pid))

	// Start the stop timeout if enabled
	if p.timeout > time.Duration(0) {
		p.stopTimerLock.Lock()
		p.stopTimer = time.AfterFunc(p.timeout, func() {
			p.logger.Warn().Log("Timeout after %s", p.timeout)
			p.Kill(false, fmt.Sprintf("Killed because timeout triggered (%s)", p.timeout))
		})
		p.stopTimerLock.Unlock()
	}

	p.setState(stateRunning)

	p.logger.Info().WithField("pid", p.pid.Load()).Log("Started")
	p.debuglogger.Debug().Log("Started")

	if p.callbacks.onStart != nil {
		p.callbacks.onStart()
	}

	// Start the readers
	go p.reader()

	return nil
}

// Stop will stop the process with SIGINT.
func (p *process) Stop(wait bool) error {
	return p.stop(wait, "")
}

// Kill will stop the process and record the reason.
func (p *process) Kill(wait bool, reason string) error {
	return p.stop(wait, reason)
}

// stop will stop a process considering the current state.
func (p *process) stop(wait bool, reason string) error {
	// If the process is currently not running, bail out
	if !p.isRunning() {
		return nil
	}

	// If the process in starting state, wait until the process has been started
	for p.getState() == stateStarting {
		time.Sleep(50 * time.Millisecond)
	}

	// If the process is already in the finishing state, don't do anything
	if state, err := p.setState(stateFinishing); err != nil || state == stateFinishing {
		if wait {
			<-p.exited
		}

		return nil
	}

	if len(reason) != 0 {
		p.stopReasonLock.Lock()
		p.stopReason = reason
		p.stopReasonLock.Unlock()
	}

	p.logger.Info().Log("Stopping")
	p.debuglogger.WithField("reason", reason).Debug().Log("Stopping")

	var err error
	if runtime.GOOS == "windows" {
		// Windows doesn't know the SIGINT
		err = p.cmd.Process.Kill()
	} else {
		// First try to stop the process gracefully.
		err = p.cmd.Process.Signal(os.Interrupt)
	}

	// Set up a timer to kill the process with SIGKILL in case SIGINT didn't have
	// an effect.
	p.killTimerLock.Lock()
	p.killTimer = time.AfterFunc(p.killTimeout, func() {
		p.logger.Warn().Log("Killing after %s", p.killTimeout)
		p.cmd.Process.Kill()
		p.stdout.Close()
		p.stderr.Close()
	})
	p.killTimerLock.Unlock()

	if wait {
		<-p.exited
	}

	return err
}

// reader copies stdout and stderr of the process into the decoder. Each
// stream is closed after EOF in order to flush a pending line.
func (p *process) reader() {
	g := errgroup.Group{}

	for name, r := range map[string]io.Reader{"stdout": p.stdout, "stderr": p.stderr} {
		name, r := name, r
		w := p.decoder.Stream(name)

		g.Go(func() error {
			_, err := io.Copy(w, r)
			w.Close()

			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Debug().WithError(err).Log("Reading output failed")
	}

	// Wait for the process to finish
	p.waiter()
}

// waiter waits for the process to finish.
func (p *process) waiter() {
	// The process exited normally, i.e. the return code is zero and no signal has been raised
	state := stateFinished

	if err := p.cmd.Wait(); err != nil {
		// The process exited abnormally, i.e. the return code is non-zero or a signal
		// has been raised.
		if exiterr, ok := err.(*exec.ExitError); ok {
			// The process exited and the status can be examined
			status := exiterr.Sys().(syscall.WaitStatus)

			p.debuglogger.WithFields(log.Fields{
				"exited":    status.Exited(),
				"signaled":  status.Signaled(),
				"status":    status.ExitStatus(),
				"exit_code": exiterr.ExitCode(),
				"signal":    status.Signal().String(),
			}).Debug().Log("Exited")

			if status.Exited() {
				// The process exited by itself with a non-zero return code
				p.logger.Info().WithField("exit_code", status.ExitStatus()).Log("Failed")
				state = stateFailed
			} else if status.Signaled() && status.Signal() == syscall.SIGINT && p.getState() == stateFinishing {
				// Interrupted on request without handling the signal
				p.logger.Info().Log("Interrupted")
				state = stateFinished
			} else {
				p.logger.Info().Log("Killed")
				state = stateKilled
			}
		} else {
			// Some other error regarding I/O triggered during Wait()
			p.logger.Info().Log("Killed")
			p.logger.WithError(err).Debug().Log("Killed")
			state = stateKilled
		}
	}

	p.setState(state)
	p.pid.Store(-1)

	p.logger.Info().Log("Stopped")
	p.debuglogger.WithField("stats", p.decoder.Stats()).Debug().Log("Stopped")

	p.stopTimerLock.Lock()
	if p.stopTimer != nil {
		p.stopTimer.Stop()
		p.stopTimer = nil
	}
	p.stopTimerLock.Unlock()

	// Stop the kill timer
	p.killTimerLock.Lock()
	if p.killTimer != nil {
		p.killTimer.Stop()
		p.killTimer = nil
	}
	p.killTimerLock.Unlock()

	if p.callbacks.onExit != nil {
		p.callbacks.onExit(state.String())
	}

	close(p.exited)
}
