package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port      int    `toml:"port"`
	AuthToken string `toml:"auth_token"`
}

type PMSConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	CustomerID     string `toml:"customer_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type SessionConfig struct {
	KeepaliveSeconds   int `toml:"keepalive_seconds"`
	IdleTimeoutSeconds int `toml:"idle_timeout_seconds"`
	QueueSize          int `toml:"queue_size"`
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	PMS     PMSConfig     `toml:"pms"`
	Session SessionConfig `toml:"session"`
}

// Default returns a runnable localhost configuration, used when no config
// file is present and everything comes from the environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 3001,
		},
		PMS: PMSConfig{
			BaseURL:        "https://pms.botel.ai",
			TimeoutSeconds: 60,
		},
		Session: SessionConfig{
			KeepaliveSeconds: 30,
			QueueSize:        64,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays environment variables on top of the file config. The
// variable names match the original deployment (.env driven).
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("MCP_AUTH_TOKEN"); v != "" {
		c.Server.AuthToken = v
	}
	if v := os.Getenv("PMS_BASE_URL"); v != "" {
		c.PMS.BaseURL = v
	}
	if v := os.Getenv("PMS_API_KEY"); v != "" {
		c.PMS.APIKey = v
	}
	if v := os.Getenv("PMS_CUSTOMER_ID"); v != "" {
		c.PMS.CustomerID = v
	}
	if v := os.Getenv("SESSION_IDLE_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Session.IdleTimeoutSeconds = secs
		}
	}
}

func (p PMSConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

func (s SessionConfig) Keepalive() time.Duration {
	return time.Duration(s.KeepaliveSeconds) * time.Second
}

// IdleTimeout returns the idle-session deadline, or zero when eviction is
// disabled.
func (s SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutSeconds) * time.Second
}
