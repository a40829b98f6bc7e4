package api

import "github.com/ob1/scannerd/scanner"

// ScanRequest restricts a scan to a subnet. An empty subnet scans the
// local networks.
type ScanRequest struct {
	Subnet  string `json:"subnet" validate:"omitempty,ipv4"`
	Bitmask int    `json:"bitmask" validate:"omitempty,min=1,max=32" format:"int"`
}

func (r *ScanRequest) Marshal() *scanner.Filter {
	if len(r.Subnet) == 0 {
		return nil
	}

	return &scanner.Filter{
		Subnet:  r.Subnet,
		Bitmask: r.Bitmask,
	}
}

// Credentials to log into a miner. Empty fields are replaced by the
// configured defaults.
type Credentials struct {
	SSHAuthChecked bool   `json:"sshAuthChecked"`
	SSHUser        string `json:"sshUser"`
	SSHPassword    string `json:"sshPassword"`
	UIUser         string `json:"uiUser"`
	UIPassword     string `json:"uiPassword"`
}

func (c *Credentials) Marshal() scanner.Credentials {
	return scanner.Credentials{
		SSHAuthChecked: c.SSHAuthChecked,
		SSHUser:        c.SSHUser,
		SSHPassword:    c.SSHPassword,
		UIUser:         c.UIUser,
		UIPassword:     c.UIPassword,
	}
}

// TargetRequest names a single miner for an upgrade or an identification
type TargetRequest struct {
	Address string `json:"address" validate:"required,ip"`
	Model   string `json:"model"`
	Credentials
}

func (r *TargetRequest) Marshal() scanner.Target {
	return scanner.Target{
		Host:        r.Address,
		Model:       r.Model,
		Credentials: r.Credentials.Marshal(),
	}
}

// UpgradeAllResponse lists the addresses of the miners an upgrade has
// been started for
type UpgradeAllResponse struct {
	Addresses []string `json:"addresses"`
	Errors    []string `json:"errors"`
}
