package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestEvent(component string, level Level) *Event {
	return &Event{
		logger:    &logger{},
		Time:      time.Date(2019, time.March, 4, 12, 0, 0, 0, time.UTC),
		Level:     level,
		Component: component,
		Caller:    "coordinator.go:42",
		Message:   "scan started",
		Data:      map[string]interface{}{"slot": "scan"},
	}
}

func TestJSONWriter(t *testing.T) {
	buffer := bytes.Buffer{}

	writer := NewJSONWriter(&buffer, Linfo)
	writer.Write(newTestEvent("Coordinator", Linfo))

	require.Equal(t, `{"caller":"coordinator.go:42","component":"Coordinator","level":"info","message":"scan started","slot":"scan","ts":"2019-03-04T12:00:00Z"}`+"\n", buffer.String())
}

func TestConsoleWriterLeadingFields(t *testing.T) {
	buffer := bytes.Buffer{}

	e := newTestEvent("Coordinator", Linfo)
	e.Data["run"] = "abc"
	e.Data["kind"] = "scan"
	e.Data["devices"] = 2

	writer := NewConsoleWriter(&buffer, Linfo, false)
	writer.Write(e)

	require.Equal(t, `ts=2019-03-04T12:00:00Z level=INFO component="Coordinator" msg="scan started" kind="scan" run="abc" devices=2 slot="scan"`+"\n", buffer.String())
}

func TestConsoleWriter(t *testing.T) {
	buffer := bytes.Buffer{}

	writer := NewConsoleWriter(&buffer, Linfo, false)
	writer.Write(newTestEvent("Coordinator", Linfo))

	require.Equal(t, `ts=2019-03-04T12:00:00Z level=INFO component="Coordinator" msg="scan started" slot="scan"`+"\n", buffer.String())
}

func TestConsoleWriterLevel(t *testing.T) {
	buffer := bytes.Buffer{}

	writer := NewConsoleWriter(&buffer, Lwarn, false)
	writer.Write(newTestEvent("Coordinator", Linfo))

	require.Equal(t, 0, buffer.Len())
}

func TestTopicWriter(t *testing.T) {
	bufwriter := NewBufferWriter(Linfo, 10)
	all := NewTopicWriter(bufwriter, []string{})
	decoderOnly := NewTopicWriter(bufwriter, []string{"Decoder"})

	all.Write(newTestEvent("Coordinator", Linfo))
	decoderOnly.Write(newTestEvent("Coordinator", Linfo))

	require.Equal(t, 1, len(bufwriter.Events()))

	all.Write(newTestEvent("decoder", Linfo))
	decoderOnly.Write(newTestEvent("decoder", Linfo))

	require.Equal(t, 3, len(bufwriter.Events()))
}

func TestMultiwriter(t *testing.T) {
	bufwriter1 := NewBufferWriter(Linfo, 10)
	bufwriter2 := NewBufferWriter(Linfo, 10)

	writer := NewMultiWriter(bufwriter1, bufwriter2)
	writer.Write(newTestEvent("Session", Linfo))

	require.Equal(t, 1, len(bufwriter1.Events()))
	require.Equal(t, 1, len(bufwriter2.Events()))
}

func TestBufferWriterRing(t *testing.T) {
	bufwriter := NewBufferWriter(Ldebug, 2)

	for _, msg := range []string{"one", "two", "three"} {
		e := newTestEvent("Process", Linfo)
		e.Message = msg
		bufwriter.Write(e)
	}

	events := bufwriter.Events()
	require.Equal(t, 2, len(events))
	require.Equal(t, "two", events[0].Message)
	require.Equal(t, "three", events[1].Message)
}

func TestChannelWriter(t *testing.T) {
	writer := NewChannelWriter()
	defer writer.Close()

	ch, cancel := writer.Subscribe()
	defer cancel()

	err := writer.Write(newTestEvent("Session", Linfo))
	require.NoError(t, err)

	select {
	case e := <-ch:
		le, ok := e.(*Event)
		require.True(t, ok)
		require.Equal(t, "Session", le.Component)
		require.Equal(t, "scan started", le.Message)
		require.Nil(t, le.logger)
	case <-time.After(5 * time.Second):
		require.Fail(t, "no event received")
	}
}
