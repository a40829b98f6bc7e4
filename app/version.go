package app

import (
	"runtime"
	"runtime/debug"

	"github.com/Masterminds/semver/v3"
)

// Name of the app
const Name = "ob1-scannerd"

// Version of the app
var Version = semver.MustParse("1.0.0")

// Commit, Branch and Build can be set with -ldflags "-X ...". Commit and
// Build are taken from the VCS information of the binary otherwise.
var (
	Commit = ""
	Branch = ""
	Build  = ""
)

// Arch is the OS and CPU architecture this app is built for.
var Arch = runtime.GOOS + "/" + runtime.GOARCH

// Compiler is the Go version this app has been built with.
var Compiler = runtime.Version()

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(Commit) == 0 {
				Commit = s.Value
			}
		case "vcs.time":
			if len(Build) == 0 {
				Build = s.Value
			}
		}
	}
}
