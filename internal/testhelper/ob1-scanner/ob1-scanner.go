package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"
)

// A stand-in for the ob1-scanner binary. The subnet of a scan selects
// the behaviour:
//
//	10.0.1.0/24  exit without a result
//	10.0.2.0/24  run until interrupted, then exit without a result
//	10.0.3.0/24  malformed lines before the result
//	10.0.4.0/24  exit with code 1 after a result
//	otherwise    one log line and a result with two devices
func main() {
	if len(os.Args) < 2 {
		os.Exit(2)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	switch os.Args[1] {
	case "scan":
		scan(arg("-i"), quit)
	case "mdns":
		mdns(quit)
	case "upgrade-gen1", "upgrade-gen2":
		upgrade(arg("-i"), quit)
	case "identify":
		logline("info", "identifying "+arg("-i"))
		select {
		case <-quit:
		case <-time.After(10 * time.Second):
		}
	default:
		os.Exit(2)
	}
}

func arg(name string) string {
	for i := 2; i < len(os.Args)-1; i++ {
		if os.Args[i] == name {
			return os.Args[i+1]
		}
	}

	return ""
}

func logline(level, msg string) {
	fmt.Printf(`{"level":%q,"msg":%q,"time":%q}`+"\n", level, msg, time.Now().Format(time.RFC3339))
}

const devices = `[{"ip":"10.0.0.5","model":"SC1","mac":"aa:bb","firmwareVersion":"v1.0.0"},{"ip":"10.0.0.6","model":"SC1 Slim","mac":"cc:dd","firmwareVersion":"v2.0.0","firmwareUpdate":"v2.1.0"}]`

func scan(subnet string, quit chan os.Signal) {
	logline("info", "scanning")

	switch subnet {
	case "10.0.1.0/24":
		return
	case "10.0.2.0/24":
		<-quit
		logline("warn", "interrupted")
		return
	case "10.0.3.0/24":
		fmt.Println("this is not json")
		fmt.Fprintln(os.Stderr, `{"level":"error","msg":"partial`)
	case "10.0.4.0/24":
		fmt.Printf(`{"status":true,"payload":%s}`, devices)
		os.Exit(1)
	}

	// The result is printed without a trailing newline
	fmt.Printf(`{"status":true,"payload":%s}`, devices)
}

func mdns(quit chan os.Signal) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	found := []string{}

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			if len(found) < 3 {
				found = append(found, fmt.Sprintf(`{"ip":"10.0.0.%d","model":"DCR1","mac":"ee:%02d","firmwareVersion":"v1.1.0"}`, 20+len(found), len(found)))
			}

			payload := "["
			for i, d := range found {
				if i != 0 {
					payload += ","
				}
				payload += d
			}
			payload += "]"

			fmt.Printf(`{"status":true,"payload":%s}`+"\n", payload)
		}
	}
}

func upgrade(host string, quit chan os.Signal) {
	logline("info", "upgrading "+host)

	select {
	case <-quit:
		logline("warn", "interrupted")
	case <-time.After(time.Second):
		logline("info", "upgraded "+host)
	}
}
