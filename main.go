package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ob1/scannerd/app/api"
	"github.com/ob1/scannerd/config/store"
	"github.com/ob1/scannerd/log"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	logger := log.New("Core").WithOutput(log.NewConsoleWriter(os.Stderr, log.Lwarn, true))

	configfile := store.Location(os.Getenv("SCANNERD_CONFIGFILE"))

	app, err := api.New(configfile, os.Stderr)
	if err != nil {
		logger.Error().WithError(err).Log("Failed to create new API")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer func() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				proc.Signal(os.Interrupt)
			}
		}()

		for {
			if err := app.Start(ctx); err != api.ErrConfigReload {
				if err != nil {
					logger.Error().WithError(err).Log("Failed to start API")
				}

				break
			} else {
				logger.Warn().WithError(err).Log("Config reload requested")
			}

			app.Stop()

			if err := app.Reload(); err != nil {
				logger.Error().WithError(err).Log("Failed to reload config")
				break
			}
		}
	}()

	// Reload the config on SIGHUP, shutdown gracefully on SIGINT and SIGTERM
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-hup:
			app.RequestReload()
			continue
		case <-quit:
		}

		break
	}

	cancel()

	// Stop the app
	app.Destroy()
}
