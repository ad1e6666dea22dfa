// file: internal/config/config.go
// version: 1.0.0
// guid: 45c05a1b-d41a-4bef-a4e4-892dafcc214e

package config

import (
	"time"

	"github.com/spf13/viper"
)

// AuthConfig carries optional HTTP basic auth credentials. Password and
// PasswordHash are alternatives: the hash (bcrypt) wins when both are set.
type AuthConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

// RateLimitConfig throttles API requests per client IP.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// TimeoutConfig holds the per-tool-class timeouts in seconds.
type TimeoutConfig struct {
	Query   int
	Convert int
	Add     int
	LRF     int
	Debug   int
	Check   int
	SMTP    int
	Fetch   int
}

// Config holds application configuration
type Config struct {
	Host        string
	Port        int
	LibraryPath string
	WorkDir     string
	BinDir      string
	InboxDir    string
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	MaxUploadMB int
	Timeouts    TimeoutConfig
	LogLevel    string
}

var AppConfig Config

// InitConfig initializes the application configuration
func InitConfig() {
	// Set defaults
	viper.SetDefault("host", "0.0.0.0")
	viper.SetDefault("port", 8080)
	viper.SetDefault("max_upload_mb", 200)
	viper.SetDefault("rate_limit.rps", 10.0)
	viper.SetDefault("rate_limit.burst", 20)
	viper.SetDefault("timeouts.query", 60)
	viper.SetDefault("timeouts.convert", 300)
	viper.SetDefault("timeouts.add", 120)
	viper.SetDefault("timeouts.lrf", 120)
	viper.SetDefault("timeouts.debug", 180)
	viper.SetDefault("timeouts.check", 180)
	viper.SetDefault("timeouts.smtp", 60)
	viper.SetDefault("timeouts.fetch", 60)
	viper.SetDefault("log_level", "info")

	AppConfig = Config{
		Host:        viper.GetString("host"),
		Port:        viper.GetInt("port"),
		LibraryPath: viper.GetString("library_path"),
		WorkDir:     viper.GetString("work_dir"),
		BinDir:      viper.GetString("bin_dir"),
		InboxDir:    viper.GetString("inbox_dir"),
		MaxUploadMB: viper.GetInt("max_upload_mb"),
		LogLevel:    viper.GetString("log_level"),
	}

	AppConfig.Auth.Username = viper.GetString("auth.username")
	AppConfig.Auth.Password = viper.GetString("auth.password")
	AppConfig.Auth.PasswordHash = viper.GetString("auth.password_hash")

	AppConfig.RateLimit.RPS = viper.GetFloat64("rate_limit.rps")
	AppConfig.RateLimit.Burst = viper.GetInt("rate_limit.burst")

	AppConfig.Timeouts = TimeoutConfig{
		Query:   viper.GetInt("timeouts.query"),
		Convert: viper.GetInt("timeouts.convert"),
		Add:     viper.GetInt("timeouts.add"),
		LRF:     viper.GetInt("timeouts.lrf"),
		Debug:   viper.GetInt("timeouts.debug"),
		Check:   viper.GetInt("timeouts.check"),
		SMTP:    viper.GetInt("timeouts.smtp"),
		Fetch:   viper.GetInt("timeouts.fetch"),
	}

	if AppConfig.MaxUploadMB <= 0 {
		AppConfig.MaxUploadMB = 200
	}
}

// AuthEnabled reports whether basic auth should protect the API.
func (c *Config) AuthEnabled() bool {
	return c.Auth.Username != "" && (c.Auth.Password != "" || c.Auth.PasswordHash != "")
}

// Duration converts one of the second-granularity timeout settings.
func Duration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
