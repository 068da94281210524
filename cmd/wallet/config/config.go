// Package config aggregates wallet client configuration from environment
// variables and an optional config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the client settings. Everything can be overridden with
// RAULWALLET_* environment variables (RAULWALLET_SERVER_URL and so on) or a
// config.yaml in the working directory or ~/.raulwallet/.
type Config struct {
	Server struct {
		URL     string
		Timeout time.Duration
	}
	UI struct {
		Theme string // "light", "dark" or "auto"
	}
	Log struct {
		Level string
		File  string
	}
	Sandbox struct {
		Addr string
		DB   string
	}
}

// Load reads configuration with sensible defaults for the hosted service.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RAULWALLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.url", "https://raulocoin.onrender.com/api")
	v.SetDefault("server.timeout", 10*time.Second)
	v.SetDefault("ui.theme", "auto")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", defaultLogFile())
	v.SetDefault("sandbox.addr", "127.0.0.1:8787")
	v.SetDefault("sandbox.db", defaultSandboxDB())

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".raulwallet"))
	}
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// defaultLogFile keeps logs out of the terminal; the TUI owns the screen.
func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "raulwallet.log"
	}
	return filepath.Join(home, ".raulwallet", "wallet.log")
}

func defaultSandboxDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "raulwallet-sandbox.db"
	}
	return filepath.Join(home, ".raulwallet", "sandbox.db")
}
