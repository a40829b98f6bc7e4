package api

import (
	"context"
	"fmt"
	"io"
	golog "log"
	gohttp "net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ob1/scannerd/app"
	"github.com/ob1/scannerd/config"
	configstore "github.com/ob1/scannerd/config/store"
	configvars "github.com/ob1/scannerd/config/vars"
	"github.com/ob1/scannerd/coordinator"
	"github.com/ob1/scannerd/http"
	"github.com/ob1/scannerd/inventory"
	"github.com/ob1/scannerd/log"
	"github.com/ob1/scannerd/prometheus"

	"github.com/google/gops/agent"
	"go.uber.org/automaxprocs/maxprocs"
)

// The API interface is the implementation for the scannerd API.
type API interface {
	// Start starts the API. This is blocking until the app has
	// been ended with Stop() or Destroy(). In this case a nil error
	// is returned. An ErrConfigReload error is returned if a
	// configuration reload has been requested.
	Start(ctx context.Context) error

	// Stop stops the API. All scanner processes are interrupted and
	// the inventory is closed.
	Stop()

	// Destroy is the same as Stop().
	Destroy()

	// Reload the configuration for the API. If there's an error the
	// previously loaded configuration is not altered.
	Reload() error

	// RequestReload lets a running Start() return ErrConfigReload.
	RequestReload()
}

type api struct {
	coordinator coordinator.Coordinator
	inventory   inventory.Inventory
	prom        prometheus.Metrics
	mainserver  *gohttp.Server

	errorChan chan error

	log struct {
		writer io.Writer
		buffer log.BufferWriter
		events log.ChannelWriter
		logger struct {
			core log.Logger
			main log.Logger
		}
	}

	config struct {
		path   string
		store  configstore.Store
		config *config.Config
	}

	lock   sync.Mutex
	wgStop sync.WaitGroup
	state  string

	undoMaxprocs func()
	gops         bool
}

// ErrConfigReload is an error returned to indicate that a reload of
// the configuration has been requested.
var ErrConfigReload = fmt.Errorf("configuration reload")

// New returns a new instance of the API interface
func New(configpath string, logwriter io.Writer) (API, error) {
	a := &api{
		state: "idle",
	}

	a.config.path = configpath
	a.log.writer = logwriter

	if a.log.writer == nil {
		a.log.writer = io.Discard
	}

	a.errorChan = make(chan error, 1)

	if err := a.Reload(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *api) Reload() error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.state == "running" {
		return fmt.Errorf("can't reload config while running")
	}

	if a.errorChan == nil {
		a.errorChan = make(chan error, 1)
	}

	logger := log.New("Core").WithOutput(log.NewConsoleWriter(a.log.writer, log.Lwarn, true))

	store, err := configstore.NewJSON(a.config.path)
	if err != nil {
		return err
	}

	cfg := store.Get()

	cfg.Merge()

	// The inventory lives in db.dir, which must exist for the validation
	if len(cfg.DB.Dir) != 0 {
		if err := os.MkdirAll(cfg.DB.Dir, 0750); err != nil {
			logger.Warn().WithError(err).WithField("path", cfg.DB.Dir).Log("Creating database directory failed")
		}
	}

	cfg.Validate(false)

	loglevel := log.ParseLevel(cfg.Log.Level)

	var output log.Writer
	if cfg.Log.Format == "json" {
		output = log.NewJSONWriter(a.log.writer, loglevel)
	} else {
		output = log.NewConsoleWriter(a.log.writer, loglevel, true)
	}

	buffer := log.NewBufferWriter(loglevel, cfg.Log.MaxLines)
	events := log.NewChannelWriter()

	logger = logger.WithOutput(log.NewSyncWriter(
		log.NewMultiWriter(
			log.NewTopicWriter(output, cfg.Log.Topics),
			buffer,
			events,
		),
	))

	logfields := log.Fields{
		"application": app.Name,
		"version":     app.Version.String(),
		"arch":        app.Arch,
		"compiler":    app.Compiler,
	}

	if len(app.Commit) != 0 {
		logfields["commit"] = app.Commit
	}

	if len(app.Branch) != 0 {
		logfields["branch"] = app.Branch
	}

	if len(app.Build) != 0 {
		logfields["build"] = app.Build
	}

	logger.Info().WithFields(logfields).Log("")

	logger.Info().WithField("path", a.config.path).Log("Read config file")

	configlogger := logger.WithComponent("Config")
	cfg.Messages(func(level string, v configvars.Variable, message string) {
		configlogger = configlogger.WithFields(log.Fields{
			"variable":    v.Name,
			"value":       v.Value,
			"env":         v.EnvName,
			"description": v.Description,
			"override":    v.Merged,
		})
		configlogger.Debug().Log(message)

		switch level {
		case configvars.LevelWarn:
			configlogger.Warn().Log(message)
		case configvars.LevelError:
			configlogger.Error().WithField("error", message).Log("")
		default:
			break
		}
	})

	if cfg.HasErrors() {
		logger.Error().WithField("error", "Not all variables are set or are valid. Check the error messages above. Bailing out.").Log("")
		return fmt.Errorf("not all variables are set or valid")
	}

	cfg.LoadedAt = time.Now()

	store.SetActive(cfg)

	a.config.store = store
	a.config.config = cfg
	a.log.logger.core = logger
	a.log.logger.main = logger.WithComponent("HTTP").WithField("address", cfg.Address)
	a.log.buffer = buffer
	a.log.events = events

	return nil
}

func (a *api) start(ctx context.Context) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.errorChan == nil {
		a.errorChan = make(chan error, 1)
	}

	if a.state == "running" {
		return fmt.Errorf("already running")
	}

	a.state = "starting"

	cfg := a.config.store.GetActive()

	undoMaxprocs, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		format = strings.TrimPrefix(format, "maxprocs: ")
		a.log.logger.core.Debug().Log(format, args...)
	}))
	if err != nil {
		a.log.logger.core.Warn().Log("%s", err.Error())
	}

	a.undoMaxprocs = undoMaxprocs

	if cfg.Debug.Gops {
		if err := agent.Listen(agent.Options{
			ReuseSocketAddrAndPort: true,
		}); err != nil {
			a.log.logger.core.Error().WithError(err).Log("Starting gops agent failed")
		} else {
			a.gops = true
		}
	}

	inv, err := inventory.New(inventory.Config{
		Path:   filepath.Join(cfg.DB.Dir, "inventory.db"),
		Logger: a.log.logger.core.WithComponent("Inventory"),
	})
	if err != nil {
		return fmt.Errorf("unable to open inventory: %w", err)
	}

	a.inventory = inv

	coord, err := coordinator.New(coordinator.Config{
		Binary:      cfg.Scanner.Binary,
		FirmwareDir: cfg.Scanner.FirmwareDir,
		Timeout:     time.Duration(cfg.Scanner.Timeout) * time.Second,
		KillTimeout: time.Duration(cfg.Scanner.KillTimeout) * time.Second,
		MaxLogs:     cfg.Scanner.MaxLogs,
		Credentials: cfg.DefaultCredentials(),
		Schedule:    cfg.Scan.Schedule,
		Filter:      cfg.ScanFilter(),
		Inventory:   inv,
		Logger:      a.log.logger.core,
	})
	if err != nil {
		return fmt.Errorf("unable to create coordinator: %w", err)
	}

	a.coordinator = coord

	var prom prometheus.Metrics

	if cfg.Metrics.EnablePrometheus {
		prom = prometheus.New()

		prom.Register(prometheus.NewUptimeCollector(cfg.ID, time.Now()))
		prom.Register(prometheus.NewMemCollector(cfg.ID))
		prom.Register(prometheus.NewSlotsCollector(cfg.ID, coord))

		a.prom = prom
	}

	serverConfig := http.Config{
		ID:          cfg.ID,
		Name:        cfg.Name,
		Scanner:     cfg.Scanner.Binary,
		CreatedAt:   cfg.CreatedAt,
		Logger:      a.log.logger.main,
		LogBuffer:   a.log.buffer,
		LogEvents:   a.log.events,
		Coordinator: coord,
		Inventory:   inv,
		Config:      a.config.store,
		Profiling:   cfg.Debug.Profiling,
		Cors: http.CorsConfig{
			Origins: cfg.API.Cors.Origins,
		},
		Auth: http.AuthConfig{
			Enable:   cfg.API.Auth.Enable,
			Username: cfg.API.Auth.Username,
			Password: cfg.API.Auth.Password,
		},
	}

	if prom != nil {
		serverConfig.Prometheus = prom
	}

	mainserverhandler, err := http.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("unable to create server: %w", err)
	}

	var wgStart sync.WaitGroup

	sendError := func(err error) {
		select {
		case a.errorChan <- err:
		default:
		}
	}

	a.mainserver = &gohttp.Server{
		Addr:              cfg.Address,
		Handler:           mainserverhandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		ErrorLog:          golog.New(a.log.logger.main.Debug(), "", 0),
	}

	wgStart.Add(1)
	a.wgStop.Add(1)

	go func() {
		logger := a.log.logger.main

		defer func() {
			logger.Info().Log("Server exited")
			a.wgStop.Done()
		}()

		wgStart.Done()

		logger.Info().Log("Server started")

		err := a.mainserver.ListenAndServe()
		if err != nil && err != gohttp.ErrServerClosed {
			err = fmt.Errorf("HTTP server: %w", err)
		} else {
			err = nil
		}

		sendError(err)
	}()

	// Wait for the server to be started
	wgStart.Wait()

	a.state = "running"

	return nil
}

func (a *api) Start(ctx context.Context) error {
	if err := a.start(ctx); err != nil {
		a.stop()
		return err
	}

	// Block until there's an error from the server or the context is done
	select {
	case err := <-a.errorChan:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (a *api) RequestReload() {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.errorChan == nil {
		return
	}

	select {
	case a.errorChan <- ErrConfigReload:
	default:
	}
}

func (a *api) stop() {
	a.lock.Lock()
	defer a.lock.Unlock()

	logger := a.log.logger.core.WithField("action", "shutdown")

	if a.state == "idle" {
		logger.Info().Log("Complete")
		return
	}

	// Shutdown the HTTP mainserver first, such that no new processes
	// can be started
	if a.mainserver != nil {
		logger := a.log.logger.main
		logger.Info().Log("Stopping ...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mainserver.Shutdown(ctx); err != nil {
			logger.Error().WithError(err).Log("")
		}

		a.mainserver = nil
	}

	// Stop all scanner processes
	if a.coordinator != nil {
		logger.Info().Log("Stopping all processes ...")
		a.coordinator.Close()
		a.coordinator = nil
	}

	if a.inventory != nil {
		if err := a.inventory.Close(); err != nil {
			logger.Error().WithError(err).Log("Closing inventory failed")
		}
		a.inventory = nil
	}

	// Unregister all collectors
	if a.prom != nil {
		a.prom.UnregisterAll()
		a.prom = nil
	}

	// Stop gops agent
	if a.gops {
		agent.Close()
		a.gops = false
	}

	// Wait for all server goroutines to exit
	logger.Info().Log("Waiting for all servers to stop ...")
	a.wgStop.Wait()

	// Drain error channel
	if a.errorChan != nil {
		close(a.errorChan)
		a.errorChan = nil
	}

	a.state = "idle"

	if a.undoMaxprocs != nil {
		a.undoMaxprocs()
		a.undoMaxprocs = nil
	}

	logger.Info().Log("Complete")
}

func (a *api) Stop() {
	a.log.logger.core.Info().Log("Shutdown requested ...")
	a.stop()
}

func (a *api) Destroy() {
	a.log.logger.core.Info().Log("Shutdown requested ...")
	a.stop()

	a.log.events.Close()
}
