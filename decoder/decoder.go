// Package decoder turns the chunked output of the scanner into classified
// records. Each output stream has its own line buffer. A line is either a
// log record, a scan result or it is dropped.
package decoder

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/ob1/scannerd/encoding/json"
	"github.com/ob1/scannerd/log"
	"github.com/ob1/scannerd/scanner"

	"github.com/tidwall/gjson"
)

// Kind is the variant of a decoded record.
type Kind int

const (
	KindUnknown Kind = iota
	KindLog
	KindResult
)

func (k Kind) String() string {
	switch k {
	case KindLog:
		return "log"
	case KindResult:
		return "result"
	}

	return "unknown"
}

// LogRecord is a diagnostic line of the scanner.
type LogRecord struct {
	Level     string `json:"level"`
	Message   string `json:"msg"`
	Timestamp string `json:"time"`
}

// ScanResult is the terminal snapshot of a scan. Devices is never nil.
type ScanResult struct {
	Success bool             `json:"status"`
	Devices []scanner.Device `json:"payload"`
}

// Record is a classified line. Depending on Kind either Log or Result
// is set.
type Record struct {
	Kind   Kind
	Log    LogRecord
	Result ScanResult
}

// Stats are the counters of a decoder over all its streams.
type Stats struct {
	Lines     uint64 // Non-empty lines that have been parsed
	Logs      uint64
	Results   uint64
	Unknown   uint64
	Malformed uint64
}

// DefaultMaxLineSize is the default limit for an unterminated line.
const DefaultMaxLineSize = 16 * 1024 * 1024

type Config struct {
	// OnRecord is called for every log and result record with the name of
	// the stream the record has been read from. Calls for the same stream
	// are in order.
	OnRecord func(stream string, r Record)

	// MaxLineSize is the number of bytes an unterminated line may grow to
	// before it is discarded. Defaults to DefaultMaxLineSize.
	MaxLineSize int

	Logger log.Logger
}

// Decoder decodes one or more output streams of a process.
type Decoder interface {
	// Stream returns a writer for the stream with the given name. The
	// same writer is returned for the same name. Close flushes a pending
	// unterminated line.
	Stream(name string) io.WriteCloser

	// Stats returns the current counters.
	Stats() Stats
}

type decoder struct {
	onRecord    func(stream string, r Record)
	maxLineSize int
	logger      log.Logger

	streams map[string]*stream
	lock    sync.Mutex

	lines     atomic.Uint64
	logs      atomic.Uint64
	results   atomic.Uint64
	unknown   atomic.Uint64
	malformed atomic.Uint64
}

func New(config Config) Decoder {
	d := &decoder{
		onRecord:    config.OnRecord,
		maxLineSize: config.MaxLineSize,
		logger:      config.Logger,
		streams:     map[string]*stream{},
	}

	if d.maxLineSize <= 0 {
		d.maxLineSize = DefaultMaxLineSize
	}

	if d.logger == nil {
		d.logger = log.New("Decoder")
	}

	return d
}

func (d *decoder) Stream(name string) io.WriteCloser {
	d.lock.Lock()
	defer d.lock.Unlock()

	s, ok := d.streams[name]
	if !ok {
		s = &stream{
			name:    name,
			decoder: d,
		}
		d.streams[name] = s
	}

	return s
}

func (d *decoder) Stats() Stats {
	return Stats{
		Lines:     d.lines.Load(),
		Logs:      d.logs.Load(),
		Results:   d.results.Load(),
		Unknown:   d.unknown.Load(),
		Malformed: d.malformed.Load(),
	}
}

// line handles a candidate line. Empty lines are discarded.
func (d *decoder) line(name string, data []byte) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return
	}

	d.lines.Add(1)

	r, err := Classify(data)
	if err != nil {
		d.malformed.Add(1)
		d.logger.Debug().WithFields(log.Fields{
			"stream": name,
			"line":   string(data),
		}).WithError(err).Log("Dropping malformed line")
		return
	}

	switch r.Kind {
	case KindLog:
		d.logs.Add(1)
	case KindResult:
		d.results.Add(1)
	default:
		d.unknown.Add(1)
		d.logger.Debug().WithFields(log.Fields{
			"stream": name,
			"line":   string(data),
		}).Log("Dropping unrecognized line")
		return
	}

	if d.onRecord != nil {
		d.onRecord(name, r)
	}
}

// Classify parses a single line. The shapes are tried in order: an object
// with a "level" key is a log record, an object with a "payload" key is
// a scan result. Anything else valid is KindUnknown. An error is returned
// for invalid JSON or a result with an unexpected payload.
func Classify(line []byte) (Record, error) {
	if !gjson.ValidBytes(line) {
		var v interface{}
		if err := json.Unmarshal(line, &v); err != nil {
			return Record{}, json.FormatError(line, err)
		}

		return Record{}, fmt.Errorf("invalid JSON")
	}

	value := gjson.ParseBytes(line)
	if !value.IsObject() {
		return Record{Kind: KindUnknown}, nil
	}

	if level := value.Get("level"); level.Exists() {
		return Record{
			Kind: KindLog,
			Log: LogRecord{
				Level:     level.String(),
				Message:   value.Get("msg").String(),
				Timestamp: value.Get("time").String(),
			},
		}, nil
	}

	if value.Get("payload").Exists() {
		result := ScanResult{}
		if err := json.Unmarshal(line, &result); err != nil {
			return Record{}, json.FormatError(line, err)
		}

		if result.Devices == nil {
			result.Devices = []scanner.Device{}
		}

		return Record{
			Kind:   KindResult,
			Result: result,
		}, nil
	}

	return Record{Kind: KindUnknown}, nil
}

type stream struct {
	name    string
	decoder *decoder
	buffer  []byte
	discard bool // Skip input up to the next newline
	closed  bool
	lock    sync.Mutex
}

// Write splits the chunk on newlines. Only complete lines are decoded,
// the remainder stays buffered until the next chunk or Close.
func (s *stream) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return 0, io.ErrClosedPipe
	}

	n := len(p)

	if s.discard {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			return n, nil
		}

		s.discard = false
		p = p[i+1:]
	}

	s.buffer = append(s.buffer, p...)

	start := 0
	for {
		i := bytes.IndexByte(s.buffer[start:], '\n')
		if i < 0 {
			break
		}

		s.decoder.line(s.name, s.buffer[start:start+i])
		start += i + 1
	}

	rest := copy(s.buffer, s.buffer[start:])
	s.buffer = s.buffer[:rest]

	if len(s.buffer) > s.decoder.maxLineSize {
		s.decoder.malformed.Add(1)
		s.decoder.logger.Warn().WithFields(log.Fields{
			"stream": s.name,
			"size":   len(s.buffer),
		}).Log("Dropping oversized line")
		s.buffer = s.buffer[:0]
		s.discard = true
	}

	return n, nil
}

// Close decodes a pending unterminated line.
func (s *stream) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	if len(s.buffer) != 0 {
		s.decoder.line(s.name, s.buffer)
		s.buffer = nil
	}

	return nil
}
