// Command sigint blocks until it receives SIGINT and exits with 255, like
// a scanner run that is interrupted.
package main

import (
	"os"
	"os/signal"
)

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	<-interrupt

	os.Exit(255)
}
