// file: internal/config/persistence.go
// version: 1.0.0
// guid: dc5ec505-26da-4cae-b757-926a170897cd

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with yaml tags for the on-disk representation.
type fileConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	LibraryPath string `yaml:"library_path,omitempty"`
	WorkDir     string `yaml:"work_dir,omitempty"`
	BinDir      string `yaml:"bin_dir,omitempty"`
	InboxDir    string `yaml:"inbox_dir,omitempty"`
	Auth        struct {
		Username     string `yaml:"username,omitempty"`
		Password     string `yaml:"password,omitempty"`
		PasswordHash string `yaml:"password_hash,omitempty"`
	} `yaml:"auth,omitempty"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	MaxUploadMB int `yaml:"max_upload_mb"`
	Timeouts    struct {
		Query   int `yaml:"query"`
		Convert int `yaml:"convert"`
		Add     int `yaml:"add"`
		LRF     int `yaml:"lrf"`
		Debug   int `yaml:"debug"`
		Check   int `yaml:"check"`
		SMTP    int `yaml:"smtp"`
		Fetch   int `yaml:"fetch"`
	} `yaml:"timeouts"`
	LogLevel string `yaml:"log_level"`
}

func snapshotFileConfig() fileConfig {
	var fc fileConfig
	fc.Host = AppConfig.Host
	fc.Port = AppConfig.Port
	fc.LibraryPath = AppConfig.LibraryPath
	fc.WorkDir = AppConfig.WorkDir
	fc.BinDir = AppConfig.BinDir
	fc.InboxDir = AppConfig.InboxDir
	fc.Auth.Username = AppConfig.Auth.Username
	fc.Auth.Password = AppConfig.Auth.Password
	fc.Auth.PasswordHash = AppConfig.Auth.PasswordHash
	fc.RateLimit.RPS = AppConfig.RateLimit.RPS
	fc.RateLimit.Burst = AppConfig.RateLimit.Burst
	fc.MaxUploadMB = AppConfig.MaxUploadMB
	fc.Timeouts.Query = AppConfig.Timeouts.Query
	fc.Timeouts.Convert = AppConfig.Timeouts.Convert
	fc.Timeouts.Add = AppConfig.Timeouts.Add
	fc.Timeouts.LRF = AppConfig.Timeouts.LRF
	fc.Timeouts.Debug = AppConfig.Timeouts.Debug
	fc.Timeouts.Check = AppConfig.Timeouts.Check
	fc.Timeouts.SMTP = AppConfig.Timeouts.SMTP
	fc.Timeouts.Fetch = AppConfig.Timeouts.Fetch
	fc.LogLevel = AppConfig.LogLevel
	return fc
}

// EffectiveYAML renders the current AppConfig as YAML, as shown by
// `config show`.
func EffectiveYAML() ([]byte, error) {
	data, err := yaml.Marshal(snapshotFileConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveConfigToFile writes the current AppConfig to a YAML file.
// Secrets are stored in plaintext here — file permissions restrict access.
func SaveConfigToFile(path string) error {
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}

	data, err := EffectiveYAML()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	// Write with restrictive permissions since it may contain credentials
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("[INFO] Configuration saved to file: %s", path)
	return nil
}

// starterConfig is the commented template written by `config init`.
const starterConfig = `# calibre-api configuration.
# Every key can also be set through the environment as CALIBRE_API_<KEY>
# (dots become underscores, e.g. CALIBRE_API_RATE_LIMIT_RPS).

host: 0.0.0.0
port: 8080

# Path to the Calibre library directory (calibredb --with-library).
# Leave empty to use calibredb's own default library.
library_path: ""

# Scratch space for uploads, transient OPF files and produced artifacts.
# Defaults to the system temp directory.
work_dir: ""

# Directory holding the Calibre executables. Leave empty to resolve them
# from PATH.
bin_dir: ""

# Optional watched inbox: e-books dropped here are added to the library
# automatically. Empty disables the watcher.
inbox_dir: ""

# Optional HTTP basic auth. Set username plus either a plaintext password
# or a bcrypt password_hash (the hash wins when both are set).
auth:
  username: ""
  password: ""
  password_hash: ""

# Per-client-IP request throttling.
rate_limit:
  rps: 10
  burst: 20

# Largest accepted upload, in megabytes.
max_upload_mb: 200

# Per-tool-class timeouts, in seconds.
timeouts:
  query: 60
  convert: 300
  add: 120
  lrf: 120
  debug: 180
  check: 180
  smtp: 60
  fetch: 60

# debug, info, warn or error.
log_level: info
`

// WriteStarterConfig writes the commented starter template for `config init`.
// It refuses to clobber an existing file.
func WriteStarterConfig(path string) error {
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Printf("[INFO] Starter configuration written to: %s", path)
	return nil
}
