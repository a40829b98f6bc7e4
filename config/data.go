package config

import "time"

// Data is the actual configuration data for the app
type Data struct {
	CreatedAt time.Time `json:"created_at"`
	LoadedAt  time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Version   int64     `json:"version" jsonschema:"minimum=1,maximum=1"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Log       struct {
		Format   string   `json:"format" enums:"console,json" jsonschema:"enum=console,enum=json"`
		Level    string   `json:"level" enums:"debug,info,warn,error,silent" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,enum=silent"`
		Topics   []string `json:"topics"`
		MaxLines int      `json:"max_lines"`
	} `json:"log"`
	DB struct {
		Dir string `json:"dir"`
	} `json:"db"`
	Scanner struct {
		Binary      string `json:"binary"`
		FirmwareDir string `json:"firmware_dir"`
		Timeout     int64  `json:"timeout_sec"`      // seconds
		KillTimeout int64  `json:"kill_timeout_sec"` // seconds
		MaxLogs     int    `json:"max_logs"`
	} `json:"scanner"`
	Scan struct {
		Schedule string `json:"schedule"`
		Subnet   string `json:"subnet"`
		Bitmask  int    `json:"bitmask"`
	} `json:"scan"`
	Credentials struct {
		SSH struct {
			User     string `json:"user"`
			Password string `json:"password"`
		} `json:"ssh"`
		UI struct {
			User     string `json:"user"`
			Password string `json:"password"`
		} `json:"ui"`
	} `json:"credentials"`
	API struct {
		Auth struct {
			Enable   bool   `json:"enable"`
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"auth"`
		Cors struct {
			Origins []string `json:"origins"`
		} `json:"cors"`
	} `json:"api"`
	Metrics struct {
		EnablePrometheus bool `json:"enable_prometheus"`
	} `json:"metrics"`
	Debug struct {
		Gops      bool `json:"gops"`
		Profiling bool `json:"profiling"`
	} `json:"debug"`
}
