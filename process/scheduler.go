package process

import (
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

// Scheduler tells when a process is due to be started the next time.
type Scheduler interface {
	// Next returns the duration from now until the process is due. A negative
	// duration and an error are returned if it will never be due again.
	Next() (time.Duration, error)

	// NextAfter is Next with the given reference time instead of now.
	NextAfter(after time.Time) (time.Duration, error)
}

type scheduleKind int

const (
	scheduleOnce scheduleKind = iota
	scheduleCron
	scheduleInterval
)

type scheduler struct {
	kind     scheduleKind
	pattern  string
	once     time.Time
	interval time.Duration
}

// NewScheduler accepts an interval ("15m"), a cron expression
// ("*/15 * * * *") or a single point in time in RFC3339.
func NewScheduler(pattern string) (Scheduler, error) {
	s := &scheduler{}

	if d, err := time.ParseDuration(pattern); err == nil {
		if d <= 0 {
			return nil, fmt.Errorf("interval must be positive: %s", pattern)
		}

		s.kind = scheduleInterval
		s.interval = d

		return s, nil
	}

	if t, err := time.Parse(time.RFC3339, pattern); err == nil {
		s.kind = scheduleOnce
		s.once = t

		return s, nil
	}

	cron := gronx.New()
	if !cron.IsValid(pattern) {
		return nil, fmt.Errorf("%q is neither an interval, a cron expression nor a RFC3339 time", pattern)
	}

	s.kind = scheduleCron
	s.pattern = pattern

	return s, nil
}

func (s *scheduler) Next() (time.Duration, error) {
	return s.NextAfter(time.Now())
}

func (s *scheduler) NextAfter(after time.Time) (time.Duration, error) {
	var t time.Time

	switch s.kind {
	case scheduleInterval:
		return s.interval, nil
	case scheduleCron:
		next, err := gronx.NextTickAfter(s.pattern, after, false)
		if err != nil {
			return time.Duration(-1), fmt.Errorf("no next time has been scheduled")
		}
		t = next
	default:
		t = s.once
	}

	d := t.Sub(after)
	if d < 0 {
		return d, fmt.Errorf("no next time has been scheduled")
	}

	return d, nil
}
