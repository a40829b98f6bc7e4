package log

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ob1/scannerd/encoding/json"
)

type Formatter interface {
	Bytes(e *Event) []byte
	String(e *Event) string
}

type jsonFormatter struct{}

// NewJSONFormatter writes one JSON object per event. The fields of the
// event are merged into the object next to ts, level, component, caller
// and message.
func NewJSONFormatter() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Bytes(e *Event) []byte {
	data := make(map[string]interface{}, len(e.Data)+5)
	for k, v := range e.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}

	data["ts"] = e.Time
	data["level"] = strings.ToLower(e.Level.String())
	data["component"] = e.Component

	if len(e.Caller) != 0 {
		data["caller"] = e.Caller
	}

	if len(e.Message) != 0 {
		data["message"] = e.Message
	}

	if len(e.err) != 0 {
		data["field_error"] = e.err
	}

	b, err := json.Marshal(data)
	if err != nil {
		b, _ = json.Marshal(map[string]string{
			"component": e.Component,
			"message":   e.Message,
			"error":     err.Error(),
		})
	}

	return b
}

func (f *jsonFormatter) String(e *Event) string {
	return string(f.Bytes(e))
}

// Fields that are written first by the console formatter. They identify
// the slot and the run a line belongs to.
var leadingFields = []string{"kind", "run", "target"}

var levelColors = map[Level]string{
	Ldebug: "\033[35m",
	Linfo:  "\033[34m",
	Lwarn:  "\033[33m",
	Lerror: "\033[31m\033[5m",
}

type consoleFormatter struct {
	color bool
}

// NewConsoleFormatter writes logfmt-like lines.
func NewConsoleFormatter(useColor bool) Formatter {
	return &consoleFormatter{
		color: useColor,
	}
}

func (f *consoleFormatter) Bytes(e *Event) []byte {
	return []byte(f.String(e))
}

func (f *consoleFormatter) String(e *Event) string {
	level := e.Level.String()
	if c, ok := levelColors[e.Level]; ok && f.color {
		level = c + level + "\033[0m"
	}

	b := strings.Builder{}

	b.WriteString(f.kv("ts", e.Time.UTC().Format(time.RFC3339)))
	b.WriteString(" " + f.kv("level", level))
	b.WriteString(" " + f.kv("component", strconv.Quote(e.Component)))

	if len(e.Message) != 0 {
		b.WriteString(" " + f.kv("msg", strconv.Quote(e.Message)))
	}

	keys := make([]string, 0, len(e.Data))
	for _, key := range leadingFields {
		if _, ok := e.Data[key]; ok {
			keys = append(keys, key)
		}
	}

	n := len(keys)

	for key := range e.Data {
		if !isLeading(key) {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys[n:])

	for _, key := range keys {
		b.WriteString(" " + f.kv(key, formatValue(e.Data[key])))
	}

	b.WriteString("\n")

	return b.String()
}

func (f *consoleFormatter) kv(key string, value string) string {
	if !f.color {
		return key + "=" + value
	}

	if key == "error" {
		value = "\033[31m" + value + "\033[0m"
	}

	return "\033[90m" + key + "=\033[0m" + value
}

func isLeading(key string) bool {
	for _, k := range leadingFields {
		if k == key {
			return true
		}
	}

	return false
}

func formatValue(value interface{}) string {
	switch val := value.(type) {
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case string:
		return strconv.Quote(val)
	case error:
		return strconv.Quote(val.Error())
	case fmt.Stringer:
		return strconv.Quote(val.String())
	}

	data, err := json.Marshal(value)
	if err != nil {
		return strconv.Quote(err.Error())
	}

	return string(data)
}
