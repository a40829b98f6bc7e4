package value

import (
	"fmt"
	"time"

	"github.com/adhocore/gronx"
)

// time

type Time time.Time

func NewTime(p *time.Time, val time.Time) *Time {
	*p = val

	return (*Time)(p)
}

func (u *Time) Set(val string) error {
	v, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return err
	}
	*u = Time(v)
	return nil
}

func (u *Time) String() string {
	v := time.Time(*u)
	return v.Format(time.RFC3339)
}

func (u *Time) Validate() error {
	return nil
}

func (u *Time) IsEmpty() bool {
	v := time.Time(*u)
	return v.IsZero()
}

// schedule, an interval, a cron expression or a point in time in RFC3339

type Schedule string

func NewSchedule(p *string, val string) *Schedule {
	*p = val

	return (*Schedule)(p)
}

func (s *Schedule) Set(val string) error {
	*s = Schedule(val)
	return nil
}

func (s *Schedule) String() string {
	return string(*s)
}

func (s *Schedule) Validate() error {
	val := string(*s)

	if len(val) == 0 {
		return nil
	}

	if d, err := time.ParseDuration(val); err == nil {
		if d <= 0 {
			return fmt.Errorf("%s is not a positive interval", val)
		}

		return nil
	}

	if _, err := time.Parse(time.RFC3339, val); err == nil {
		return nil
	}

	cron := gronx.New()
	if !cron.IsValid(val) {
		return fmt.Errorf("%s is neither an interval, a cron expression nor a RFC3339 time", val)
	}

	return nil
}

func (s *Schedule) IsEmpty() bool {
	return len(string(*s)) == 0
}
