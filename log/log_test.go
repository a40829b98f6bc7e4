package log

import (
	"bufio"
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoglevelNames(t *testing.T) {
	assert.Equal(t, "DEBUG", Ldebug.String())
	assert.Equal(t, "ERROR", Lerror.String())
	assert.Equal(t, "WARN", Lwarn.String())
	assert.Equal(t, "INFO", Linfo.String())
	assert.Equal(t, `SILENT`, Lsilent.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Lsilent, ParseLevel("silent"))
	assert.Equal(t, Lerror, ParseLevel("ERROR"))
	assert.Equal(t, Lwarn, ParseLevel("warn"))
	assert.Equal(t, Linfo, ParseLevel("info"))
	assert.Equal(t, Ldebug, ParseLevel("debug"))
	assert.Equal(t, Linfo, ParseLevel("verbose"))
}

func TestLogColorToNotTTY(t *testing.T) {
	var buffer bytes.Buffer
	writer := bufio.NewWriter(&buffer)

	w := NewConsoleWriter(writer, Linfo, true).(*syncWriter)
	formatter := w.writer.(*consoleWriter).formatter.(*consoleFormatter)

	assert.NotEqual(t, true, formatter.color, "Color should not be used on a buffer logger")
}

func TestLogComponent(t *testing.T) {
	var buffer bytes.Buffer
	writer := bufio.NewWriter(&buffer)

	logger := New("Coordinator").WithOutput(NewConsoleWriter(writer, Linfo, false))

	logger.Info().Log("info")
	writer.Flush()

	assert.Contains(t, buffer.String(), `component="Coordinator"`)

	buffer.Reset()

	logger.WithComponent("Session").Info().Log("info")
	writer.Flush()

	assert.Contains(t, buffer.String(), `component="Session"`)
}

func TestLogLevels(t *testing.T) {
	levels := []Level{Lsilent, Lerror, Lwarn, Linfo, Ldebug}

	for _, level := range levels {
		var buffer bytes.Buffer
		writer := bufio.NewWriter(&buffer)

		logger := New("test").WithOutput(NewConsoleWriter(writer, level, false))

		written := 0
		for i, write := range []func(){
			func() { logger.Error().Log("error") },
			func() { logger.Warn().Log("warn") },
			func() { logger.Info().Log("info") },
			func() { logger.Debug().Log("debug") },
		} {
			before := buffer.Len()
			write()
			writer.Flush()

			if buffer.Len() > before {
				written++
			}

			if Level(i+1) <= level {
				assert.Greater(t, buffer.Len(), before, "level %s should write %d", level, i+1)
			} else {
				assert.Equal(t, before, buffer.Len(), "level %s should not write %d", level, i+1)
			}
		}

		assert.Equal(t, int(level), written)
	}
}

func TestLogFields(t *testing.T) {
	bufwriter := NewBufferWriter(Ldebug, 10)

	logger := New("Process").WithOutput(bufwriter)
	logger.WithFields(Fields{
		"binary": "ob1-scanner",
		"pid":    42,
	}).WithError(fmt.Errorf("exit status 1")).Warn().Log("Exited")

	events := bufwriter.Events()
	require.Equal(t, 1, len(events))
	require.Equal(t, Lwarn, events[0].Level)
	require.Equal(t, "ob1-scanner", events[0].Data["binary"])
	require.Equal(t, 42, events[0].Data["pid"])
	require.Equal(t, "Exited", events[0].Message)
	require.EqualError(t, events[0].Data["error"].(error), "exit status 1")
}

func TestLogFuncFieldRejected(t *testing.T) {
	bufwriter := NewBufferWriter(Ldebug, 10)

	logger := New("Process").WithOutput(bufwriter)
	logger.WithField("callback", func() {}).Info().Log("")

	events := bufwriter.Events()
	require.Equal(t, 1, len(events))
	require.NotContains(t, events[0].Data, "callback")
}
