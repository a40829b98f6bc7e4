// Package scanner describes the command line contract of the ob1-scanner
// binary and the device records it reports.
package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Default credentials of a factory fresh miner.
const (
	DefaultSSHUser     = "root"
	DefaultSSHPassword = "obelisk"
	DefaultUIUser      = "admin"
	DefaultUIPassword  = "admin"
)

// Firmware archives and the detection helper expected in the firmware
// directory for generation 1 upgrades.
const (
	DetectHelper = "detect"
	SC1Firmware  = "sc1-v1.3.0.tar.gz"
	DCR1Firmware = "dcr1-v1.3.0.tar.gz"
)

// DefaultFirmwareVersion is assumed for devices that don't report a version.
const DefaultFirmwareVersion = "v1.0.0"

// Generation of a miner. Generation 1 devices are upgraded over SSH with
// file transfer, generation 2 devices through their web API.
type Generation int

const (
	Gen1 Generation = 1
	Gen2 Generation = 2
)

func (g Generation) String() string {
	return fmt.Sprintf("gen%d", int(g))
}

var gen1Models = map[string]struct{}{
	"SC1":  {},
	"DCR1": {},
}

// GenerationOf returns the generation of a model. Only exact model names
// belong to generation 1, i.e. "SC1 Slim" is a generation 2 model.
func GenerationOf(model string) Generation {
	if _, ok := gen1Models[model]; ok {
		return Gen1
	}

	return Gen2
}

// Filter restricts a scan to a subnet.
type Filter struct {
	Subnet  string
	Bitmask int
}

// CIDR returns the filter in <subnet>/<bitmask> notation. If the subnet
// already carries a bitmask it is returned unchanged.
func (f Filter) CIDR() string {
	if strings.Contains(f.Subnet, "/") || f.Bitmask == 0 {
		return f.Subnet
	}

	return fmt.Sprintf("%s/%d", f.Subnet, f.Bitmask)
}

// Credentials for logging into a miner. The SSH pair is used for
// generation 1 upgrades, the UI pair for generation 2 upgrades and
// identification.
type Credentials struct {
	SSHAuthChecked bool
	SSHUser        string
	SSHPassword    string
	UIUser         string
	UIPassword     string
}

// WithDefaults returns the credentials with every empty field replaced by
// its default. If SSHAuthChecked is false, the SSH pair is always replaced.
func (c Credentials) WithDefaults() Credentials {
	r := c

	if !c.SSHAuthChecked {
		r.SSHUser = DefaultSSHUser
		r.SSHPassword = DefaultSSHPassword
	}

	if len(r.SSHUser) == 0 {
		r.SSHUser = DefaultSSHUser
	}

	if len(r.SSHPassword) == 0 {
		r.SSHPassword = DefaultSSHPassword
	}

	if len(r.UIUser) == 0 {
		r.UIUser = DefaultUIUser
	}

	if len(r.UIPassword) == 0 {
		r.UIPassword = DefaultUIPassword
	}

	return r
}

// Merge returns the credentials with every empty field taken from
// fallback. The SSH pair of c is only taken if SSHAuthChecked is set.
func (c Credentials) Merge(fallback Credentials) Credentials {
	r := fallback

	if c.SSHAuthChecked {
		r.SSHAuthChecked = true

		if len(c.SSHUser) != 0 {
			r.SSHUser = c.SSHUser
		}

		if len(c.SSHPassword) != 0 {
			r.SSHPassword = c.SSHPassword
		}
	}

	if len(c.UIUser) != 0 {
		r.UIUser = c.UIUser
	}

	if len(c.UIPassword) != 0 {
		r.UIPassword = c.UIPassword
	}

	return r
}

// Target is a device an upgrade or identification is aimed at.
type Target struct {
	Host        string
	Model       string
	Credentials Credentials
}

// ScanArgs returns the arguments for scanning the network. A nil filter
// or an empty subnet lets the scanner pick the local subnet.
func ScanArgs(filter *Filter) []string {
	args := []string{"scan"}

	if filter != nil && len(filter.Subnet) != 0 {
		args = append(args, "-i", filter.CIDR())
	}

	return append(args, "-j")
}

// DiscoveryArgs returns the arguments for a mDNS discovery.
func DiscoveryArgs() []string {
	return []string{"mdns", "-j"}
}

// UpgradeArgs returns the arguments for upgrading the target. The upgrade
// path depends on the generation of the target's model. firmwareDir is the
// directory with the generation 1 firmware archives.
func UpgradeArgs(target Target, firmwareDir string) []string {
	creds := target.Credentials.WithDefaults()

	if GenerationOf(target.Model) == Gen1 {
		return []string{
			"upgrade-gen1",
			"-z", filepath.Join(firmwareDir, DetectHelper),
			"-s", filepath.Join(firmwareDir, SC1Firmware),
			"-d", filepath.Join(firmwareDir, DCR1Firmware),
			"-u", creds.SSHUser,
			"-p", creds.SSHPassword,
			"-i", target.Host,
		}
	}

	return []string{"upgrade-gen2", "-i", target.Host, "-u", creds.UIUser, "-p", creds.UIPassword}
}

// IdentifyArgs returns the arguments for letting the target flash its LEDs.
func IdentifyArgs(target Target) []string {
	creds := target.Credentials.WithDefaults()

	return []string{"identify", "-i", target.Host, "-u", creds.UIUser, "-p", creds.UIPassword, "-j"}
}

// Device is a miner as reported by the scanner.
type Device struct {
	IP               string        `json:"ip"`
	Model            string        `json:"model"`
	MAC              string        `json:"mac"`
	Firmware         string        `json:"firmwareVersion"`
	FirmwareUpdate   string        `json:"firmwareUpdate,omitempty"`
	FirmwareRollback string        `json:"rollbackFirmwareVersion,omitempty"`
	BurninStatus     *BurninStatus `json:"burninStatus,omitempty"`
}

type BurninStatus struct {
	DeviceStatus    string            `json:"deviceStatus"`
	HashboardStatus []HashboardStatus `json:"hashboardStatus"`
}

type HashboardStatus struct {
	Type             string  `json:"type,omitempty"`
	Status           string  `json:"status,omitempty"`
	ExpectedHashrate float32 `json:"expectedHashrate,omitempty"`
	ActualHashrate   float32 `json:"actualHashrate,omitempty"`
}

// FirmwareVersion returns the normalized firmware version. Versions are
// sometimes reported as "<name> <version>".
func (d Device) FirmwareVersion() string {
	fields := strings.Split(strings.TrimSpace(d.Firmware), " ")
	if len(fields[0]) == 0 {
		return DefaultFirmwareVersion
	}

	if len(fields) >= 2 {
		return fields[1]
	}

	return fields[0]
}

func (d Device) Generation() Generation {
	return GenerationOf(d.Model)
}

var gen1Latest = semver.MustParse("v1.2.0")

// Upgradable returns whether a newer firmware is available for the device.
// Generation 1 devices below v1.2.0 are upgradable, generation 2 devices
// if the scanner reported a firmware update.
func (d Device) Upgradable() bool {
	if d.Generation() == Gen2 {
		return len(d.FirmwareUpdate) != 0
	}

	v, err := semver.NewVersion(d.FirmwareVersion())
	if err != nil {
		return false
	}

	return v.LessThan(gen1Latest)
}
