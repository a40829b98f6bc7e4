// Package log forwards the output of the echo logger to a log.Logger
package log

import (
	"strings"

	"github.com/ob1/scannerd/encoding/json"
	"github.com/ob1/scannerd/log"
)

type wrapper struct {
	logger log.Logger
}

type entry struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	File    string `json:"file"`
	Line    string `json:"line"`
}

// NewWrapper returns a writer for the echo logger. Every JSON line that
// echo writes becomes one event per line of its message, with the level
// of the line. Anything else is logged as is at debug level.
func NewWrapper(logger log.Logger) *wrapper {
	return &wrapper{
		logger: logger,
	}
}

func (w *wrapper) Write(p []byte) (int, error) {
	e := entry{}

	if err := json.Unmarshal(p, &e); err != nil || len(e.Message) == 0 {
		w.logger.Debug().Log("%s", strings.TrimSpace(string(p)))
		return len(p), nil
	}

	logger := w.logger
	if len(e.File) != 0 {
		logger = logger.WithField("source", e.File+":"+e.Line)
	}

	switch strings.ToUpper(e.Level) {
	case "ERROR":
		logger = logger.Error()
	case "WARN":
		logger = logger.Warn()
	case "INFO":
		logger = logger.Info()
	default:
		logger = logger.Debug()
	}

	for _, line := range strings.Split(e.Message, "\n") {
		logger.Log("%s", line)
	}

	return len(p), nil
}
