package decoder

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type collector struct {
	records []Record
	streams []string
	lock    sync.Mutex
}

func (c *collector) onRecord(stream string, r Record) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.records = append(c.records, r)
	c.streams = append(c.streams, stream)
}

func (c *collector) Records() []Record {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]Record{}, c.records...)
}

func newTestDecoder() (Decoder, *collector) {
	c := &collector{}

	d := New(Config{
		OnRecord: c.onRecord,
	})

	return d, c
}

const (
	logLine    = `{"level":"info","msg":"scanning","time":"t1"}`
	resultLine = `{"status":true,"payload":[{"ip":"10.0.0.5","model":"SC1","mac":"aa:bb","firmwareVersion":"v1.0.0"}]}`
)

func TestClassifyLog(t *testing.T) {
	r, err := Classify([]byte(logLine))
	require.NoError(t, err)
	require.Equal(t, KindLog, r.Kind)
	require.Equal(t, LogRecord{Level: "info", Message: "scanning", Timestamp: "t1"}, r.Log)
}

func TestClassifyResult(t *testing.T) {
	r, err := Classify([]byte(resultLine))
	require.NoError(t, err)
	require.Equal(t, KindResult, r.Kind)
	require.True(t, r.Result.Success)
	require.Equal(t, 1, len(r.Result.Devices))
	require.Equal(t, "10.0.0.5", r.Result.Devices[0].IP)
	require.Equal(t, "SC1", r.Result.Devices[0].Model)
	require.Equal(t, "aa:bb", r.Result.Devices[0].MAC)
	require.Equal(t, "v1.0.0", r.Result.Devices[0].Firmware)
}

func TestClassifyNullPayload(t *testing.T) {
	r, err := Classify([]byte(`{"status":false,"payload":null}`))
	require.NoError(t, err)
	require.Equal(t, KindResult, r.Kind)
	require.NotNil(t, r.Result.Devices)
	require.Equal(t, 0, len(r.Result.Devices))
}

func TestClassifyLevelBeforePayload(t *testing.T) {
	r, err := Classify([]byte(`{"level":"warn","msg":"both","payload":[]}`))
	require.NoError(t, err)
	require.Equal(t, KindLog, r.Kind)
}

func TestClassifyUnknown(t *testing.T) {
	for _, line := range []string{`{"foo":"bar"}`, `[1,2,3]`, `"level"`, `42`} {
		r, err := Classify([]byte(line))
		require.NoError(t, err, line)
		require.Equal(t, KindUnknown, r.Kind, line)
	}
}

func TestClassifyMalformed(t *testing.T) {
	_, err := Classify([]byte(`{"level":"info",`))
	require.Error(t, err)

	_, err = Classify([]byte(`{"status":true,"payload":{"ip":"10.0.0.5"}}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 1")
}

func TestDecoderLineCount(t *testing.T) {
	d, _ := newTestDecoder()
	w := d.Stream("stdout")

	input := strings.Repeat(logLine+"\n", 5) + `{"level":"info"`
	for i := 0; i < len(input); i += 7 {
		end := i + 7
		if end > len(input) {
			end = len(input)
		}

		_, err := w.Write([]byte(input[i:end]))
		require.NoError(t, err)
	}

	require.Equal(t, uint64(5), d.Stats().Lines)
	require.Equal(t, uint64(5), d.Stats().Logs)
}

func TestDecoderSplitIdempotence(t *testing.T) {
	d1, c1 := newTestDecoder()
	w1 := d1.Stream("stdout")
	w1.Write([]byte(logLine))
	require.Equal(t, 0, len(c1.Records()))
	w1.Write([]byte("\n"))

	d2, c2 := newTestDecoder()
	w2 := d2.Stream("stdout")
	w2.Write([]byte(logLine + "\n"))

	require.Equal(t, 1, len(c1.Records()))
	require.Equal(t, c2.Records(), c1.Records())
	require.Equal(t, d2.Stats(), d1.Stats())
}

func TestDecoderEmptyChunksAndLines(t *testing.T) {
	d, c := newTestDecoder()
	w := d.Stream("stdout")

	n, err := w.Write([]byte{})
	require.NoError(t, err)
	require.Equal(t, 0, n)

	w.Write([]byte("\n"))
	w.Write([]byte("   \r\n\n"))

	require.Equal(t, uint64(0), d.Stats().Lines)
	require.Equal(t, 0, len(c.Records()))
}

func TestDecoderMalformedInterspersed(t *testing.T) {
	d, c := newTestDecoder()
	w := d.Stream("stdout")

	w.Write([]byte("garbage\n" + logLine + "\n{\"level\":\n" + resultLine + "\nnot json either\n"))

	records := c.Records()
	require.Equal(t, 2, len(records))
	require.Equal(t, KindLog, records[0].Kind)
	require.Equal(t, "scanning", records[0].Log.Message)
	require.Equal(t, KindResult, records[1].Kind)
	require.Equal(t, "10.0.0.5", records[1].Result.Devices[0].IP)

	stats := d.Stats()
	require.Equal(t, uint64(5), stats.Lines)
	require.Equal(t, uint64(3), stats.Malformed)
}

func TestDecoderUnknownDropped(t *testing.T) {
	d, c := newTestDecoder()
	w := d.Stream("stdout")

	w.Write([]byte(`{"hello":"world"}` + "\n"))

	require.Equal(t, 0, len(c.Records()))
	require.Equal(t, uint64(1), d.Stats().Unknown)
}

func TestDecoderMultibyteAcrossChunks(t *testing.T) {
	d, c := newTestDecoder()
	w := d.Stream("stdout")

	line := []byte(`{"level":"info","msg":"Größe 🚀","time":"t1"}` + "\n")
	split := strings.Index(string(line), "🚀") + 2

	w.Write(line[:split])
	w.Write(line[split:])

	records := c.Records()
	require.Equal(t, 1, len(records))
	require.Equal(t, "Größe 🚀", records[0].Log.Message)
}

func TestDecoderCloseFlushes(t *testing.T) {
	d, c := newTestDecoder()
	w := d.Stream("stdout")

	w.Write([]byte(logLine + "\n" + resultLine))
	require.Equal(t, 1, len(c.Records()))

	require.NoError(t, w.Close())

	records := c.Records()
	require.Equal(t, 2, len(records))
	require.Equal(t, KindResult, records[1].Kind)

	_, err := w.Write([]byte(logLine + "\n"))
	require.Error(t, err)

	require.NoError(t, w.Close())
	require.Equal(t, 2, len(c.Records()))
}

func TestDecoderStreamsAreIndependent(t *testing.T) {
	d, c := newTestDecoder()
	stdout := d.Stream("stdout")
	stderr := d.Stream("stderr")

	require.Same(t, stdout, d.Stream("stdout"))

	stdout.Write([]byte(`{"level":"info",`))
	stderr.Write([]byte(`{"level":"error","msg":"boom"}` + "\n"))
	stdout.Write([]byte(`"msg":"scanning"}` + "\n"))

	records := c.Records()
	require.Equal(t, 2, len(records))
	require.Equal(t, "boom", records[0].Log.Message)
	require.Equal(t, "scanning", records[1].Log.Message)
	require.Equal(t, []string{"stderr", "stdout"}, c.streams)
	require.Equal(t, uint64(0), d.Stats().Malformed)
}

func TestDecoderOversizedLine(t *testing.T) {
	c := &collector{}
	d := New(Config{
		OnRecord:    c.onRecord,
		MaxLineSize: 16,
	})
	w := d.Stream("stdout")

	w.Write([]byte(strings.Repeat("x", 32)))
	w.Write([]byte("\n" + logLine + "\n"))

	require.Equal(t, 1, len(c.Records()))
	require.Equal(t, uint64(1), d.Stats().Malformed)
}

func TestDecoderOversizedLineTail(t *testing.T) {
	c := &collector{}
	d := New(Config{
		OnRecord:    c.onRecord,
		MaxLineSize: 16,
	})
	w := d.Stream("stdout")

	w.Write([]byte(strings.Repeat("x", 32)))
	w.Write([]byte(strings.Repeat("y", 32)))
	w.Write([]byte("tail\n" + logLine + "\n"))
	w.Write([]byte(strings.Repeat("z", 32)))
	w.Close()

	records := c.Records()
	require.Equal(t, 1, len(records))
	require.Equal(t, KindLog, records[0].Kind)

	stats := d.Stats()
	require.Equal(t, uint64(2), stats.Malformed)
	require.Equal(t, uint64(0), stats.Unknown)
	require.Equal(t, uint64(1), stats.Lines)
}
