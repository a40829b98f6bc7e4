package process

import (
	"sync"
	"testing"
	"time"

	"github.com/ob1/scannerd/decoder"
	"github.com/ob1/scannerd/internal/testhelper"

	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	p, err := New(Config{
		Binary: "sleep",
		Args: []string{
			"10",
		},
	})
	require.NoError(t, err)

	require.Equal(t, "finished", p.Status().State)

	err = p.Start()
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return p.Status().State == "running"
	}, 10*time.Second, 100*time.Millisecond)

	status := p.Status()
	require.Greater(t, status.PID, int32(0))
	require.Equal(t, []string{"10"}, status.CommandArgs)

	p.Stop(true)

	require.Equal(t, "finished", p.Status().State)
	require.Equal(t, int32(-1), p.Status().PID)
}

func TestProcessStartOnce(t *testing.T) {
	p, _ := New(Config{
		Binary: "sleep",
		Args:   []string{"0"},
	})

	require.NoError(t, p.Start())
	require.Error(t, p.Start())

	p.Stop(true)
}

func TestNoBinary(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestNonExistingProcess(t *testing.T) {
	started := false
	exited := false

	p, _ := New(Config{
		Binary: "sloop",
		Args: []string{
			"10",
		},
		OnStart: func() { started = true },
		OnExit:  func(string) { exited = true },
	})

	err := p.Start()
	require.Error(t, err)

	require.Equal(t, "failed", p.Status().State)
	require.False(t, started)
	require.False(t, exited)

	require.NoError(t, p.Stop(true))
}

func TestProcessFailed(t *testing.T) {
	wg := sync.WaitGroup{}
	wg.Add(1)

	var exitState string

	p, _ := New(Config{
		Binary: "ls",
		Args: []string{
			"--this-flag-does-not-exist",
		},
		OnExit: func(state string) {
			exitState = state
			wg.Done()
		},
	})

	p.Start()

	wg.Wait()

	require.Equal(t, "failed", exitState)
	require.Equal(t, "failed", p.Status().State)
}

func TestProcessStates(t *testing.T) {
	states := []string{}
	lock := sync.Mutex{}

	p, _ := New(Config{
		Binary: "sleep",
		Args:   []string{"0"},
		OnStateChange: func(from, to string) {
			lock.Lock()
			defer lock.Unlock()

			states = append(states, from+">"+to)
		},
	})

	p.Start()

	require.Eventually(t, func() bool {
		return !p.IsRunning()
	}, 10*time.Second, 100*time.Millisecond)

	lock.Lock()
	defer lock.Unlock()

	require.Equal(t, []string{"finished>starting", "starting>running", "running>finished"}, states)
}

func TestProcessSIGINTExitCode(t *testing.T) {
	binary, err := testhelper.BuildBinary("sigint", "../internal/testhelper")
	require.NoError(t, err, "Failed to build helper program")

	p, _ := New(Config{
		Binary: binary,
	})

	err = p.Start()
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return p.Status().State == "running"
	}, 10*time.Second, 100*time.Millisecond)

	start := time.Now()
	p.Stop(true)

	require.Less(t, time.Since(start), 5*time.Second)
	require.Equal(t, "failed", p.Status().State)
}

func TestProcessForceKill(t *testing.T) {
	binary, err := testhelper.BuildBinary("ignoresigint", "../internal/testhelper")
	require.NoError(t, err, "Failed to build helper program")

	p, _ := New(Config{
		Binary:      binary,
		KillTimeout: time.Second,
	})

	err = p.Start()
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return p.Status().State == "running"
	}, 10*time.Second, 100*time.Millisecond)

	start := time.Now()
	p.Stop(false)

	require.Equal(t, "finishing", p.Status().State)

	require.Eventually(t, func() bool {
		return p.Status().State == "killed"
	}, 10*time.Second, 100*time.Millisecond)

	require.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestProcessTimeout(t *testing.T) {
	p, _ := New(Config{
		Binary:  "sleep",
		Args:    []string{"10"},
		Timeout: time.Second,
	})

	p.Start()

	require.Eventually(t, func() bool {
		return !p.IsRunning()
	}, 10*time.Second, 100*time.Millisecond)

	require.Contains(t, p.Status().Reason, "timeout")
}

func TestProcessDecodesOutput(t *testing.T) {
	binary, err := testhelper.BuildBinary("ob1-scanner", "../internal/testhelper")
	require.NoError(t, err, "Failed to build helper program")

	records := []decoder.Record{}
	lock := sync.Mutex{}

	dec := decoder.New(decoder.Config{
		OnRecord: func(stream string, r decoder.Record) {
			lock.Lock()
			defer lock.Unlock()

			records = append(records, r)
		},
	})

	order := []string{}

	wg := sync.WaitGroup{}
	wg.Add(1)

	p, _ := New(Config{
		Binary:  binary,
		Args:    []string{"scan", "-i", "10.0.3.0/24", "-j"},
		Decoder: dec,
		OnStart: func() {
			lock.Lock()
			defer lock.Unlock()

			order = append(order, "start")
			require.Equal(t, 0, len(records))
		},
		OnExit: func(state string) {
			order = append(order, state)
			wg.Done()
		},
	})

	err = p.Start()
	require.NoError(t, err)

	wg.Wait()

	require.Equal(t, []string{"start", "finished"}, order)

	lock.Lock()
	defer lock.Unlock()

	require.Equal(t, 2, len(records))
	require.Equal(t, decoder.KindLog, records[0].Kind)
	require.Equal(t, decoder.KindResult, records[1].Kind)
	require.Equal(t, 2, len(records[1].Result.Devices))

	stats := dec.Stats()
	require.Equal(t, uint64(2), stats.Malformed)
}
