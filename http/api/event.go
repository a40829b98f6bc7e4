package api

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ob1/scannerd/encoding/json"
	"github.com/ob1/scannerd/event"
	"github.com/ob1/scannerd/log"
)

type LogEvent struct {
	Timestamp int64  `json:"ts" format:"int64"`
	Level     string `json:"level"`
	Component string `json:"event"`
	Message   string `json:"message"`
	Caller    string `json:"caller"`

	Data map[string]string `json:"data"`
}

func (e *LogEvent) Unmarshal(le *log.Event) {
	e.Timestamp = le.Time.Unix()
	e.Level = strings.ToLower(le.Level.String())
	e.Component = strings.ToLower(le.Component)
	e.Message = le.Message
	e.Caller = le.Caller

	e.Data = make(map[string]string)

	for k, v := range le.Data {
		var value string

		switch val := v.(type) {
		case string:
			value = val
		case error:
			value = val.Error()
		default:
			if s, ok := v.(fmt.Stringer); ok {
				value = s.String()
			} else {
				if jsonvalue, err := json.Marshal(v); err == nil {
					value = string(jsonvalue)
				} else {
					value = err.Error()
				}
			}
		}

		e.Data[k] = value
	}
}

func (e *LogEvent) Filter(ef *LogEventFilter) bool {
	if ef.reComponent != nil {
		if !ef.reComponent.MatchString(e.Component) {
			return false
		}
	}

	if ef.reMessage != nil {
		if !ef.reMessage.MatchString(e.Message) {
			return false
		}
	}

	if ef.reLevel != nil {
		if !ef.reLevel.MatchString(e.Level) {
			return false
		}
	}

	for k, r := range ef.reData {
		v, ok := e.Data[k]
		if !ok {
			return false
		}

		if !r.MatchString(v) {
			return false
		}
	}

	return true
}

// LogEventFilter selects log events. All fields are case insensitive
// regular expressions, empty fields match everything.
type LogEventFilter struct {
	Component string            `json:"event"`
	Message   string            `json:"message"`
	Level     string            `json:"level"`
	Data      map[string]string `json:"data"`

	reComponent *regexp.Regexp
	reMessage   *regexp.Regexp
	reLevel     *regexp.Regexp
	reData      map[string]*regexp.Regexp
}

func compile(expr string) (*regexp.Regexp, error) {
	if len(expr) == 0 {
		return nil, nil
	}

	return regexp.Compile("(?i)" + expr)
}

func (ef *LogEventFilter) Compile() error {
	var err error

	if ef.reComponent, err = compile(ef.Component); err != nil {
		return err
	}

	if ef.reMessage, err = compile(ef.Message); err != nil {
		return err
	}

	if ef.reLevel, err = compile(ef.Level); err != nil {
		return err
	}

	ef.reData = make(map[string]*regexp.Regexp)

	for k, v := range ef.Data {
		r, err := compile(v)
		if err != nil {
			return err
		}

		if r != nil {
			ef.reData[k] = r
		}
	}

	return nil
}

// SlotEvent is a change of an operation slot as sent to the event stream
type SlotEvent struct {
	Type      string `json:"type" jsonschema:"enum=start,enum=reset,enum=log,enum=result,enum=exit,enum=upgrade"`
	Kind      string `json:"kind"`
	RunID     string `json:"run_id,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Level     string `json:"level,omitempty"`
	Message   string `json:"message,omitempty"`
	Address   string `json:"address,omitempty"`
	Devices   int    `json:"devices,omitempty" format:"int"`
	Timestamp int64  `json:"ts" format:"int64"`
}

func (p *SlotEvent) Unmarshal(e event.Event) bool {
	evt, ok := e.(*event.SlotEvent)
	if !ok {
		return false
	}

	p.Type = evt.Type
	p.Kind = evt.Kind
	p.RunID = evt.RunID
	p.From = evt.From
	p.To = evt.To
	p.Level = evt.Level
	p.Message = evt.Message
	p.Address = evt.Address
	p.Devices = evt.Devices
	p.Timestamp = evt.Timestamp.UnixMilli()

	return true
}

type LogEventFilters struct {
	Filters []LogEventFilter `json:"filters"`
}
