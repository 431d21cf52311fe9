package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all daemon configuration
type Config struct {
	Listen      string `yaml:"listen"`
	ServerName  string `yaml:"server_name"`
	Network     string `yaml:"network"`
	MaxUsers    int    `yaml:"max_users"`
	MaxChannels int    `yaml:"max_channels"`
	MaxParams   int    `yaml:"max_params"`

	Limits    Limits    `yaml:"limits"`
	Oper      Oper      `yaml:"oper"`
	Keepalive Keepalive `yaml:"keepalive"`

	// DefaultChannelModes is applied to every newly created channel,
	// e.g. "nt".
	DefaultChannelModes string `yaml:"default_channel_modes"`

	DataDir       string `yaml:"data_dir"`
	MetricsListen string `yaml:"metrics_listen"`
	Debug         bool   `yaml:"debug"`
}

// Limits are the protocol length bounds, in bytes
type Limits struct {
	Line    int `yaml:"line"`
	Nick    int `yaml:"nick"`
	User    int `yaml:"user"`
	Real    int `yaml:"real"`
	Channel int `yaml:"channel"`
	Topic   int `yaml:"topic"`
	Away    int `yaml:"away"`
}

// Oper is the single operator credential pair
type Oper struct {
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Keepalive thresholds are counted in ticks
type Keepalive struct {
	Tick                time.Duration `yaml:"tick"`
	UnregisteredTimeout int           `yaml:"unregistered_timeout"`
	PingTime            int           `yaml:"ping_time"`
	PingTimeout         int           `yaml:"ping_timeout"`
}

// Default returns the built-in configuration
func Default() *Config {
	name, err := os.Hostname()
	if err != nil || name == "" {
		name = "tinyircd"
	}

	return &Config{
		Listen:      ":6667",
		ServerName:  name,
		Network:     "tinyircd network",
		MaxUsers:    5,
		MaxChannels: 4,
		MaxParams:   15,
		Limits: Limits{
			Line:    510,
			Nick:    9,
			User:    10,
			Real:    50,
			Channel: 49,
			Topic:   307,
			Away:    307,
		},
		Oper: Oper{
			Name:     "name",
			Password: "password",
		},
		Keepalive: Keepalive{
			Tick:                time.Second,
			UnregisteredTimeout: 30,
			PingTime:            90,
			PingTimeout:         180,
		},
		DataDir: "./data",
	}
}

// Load reads and parses a YAML configuration file. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	// Set defaults
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var envOverrides = []struct {
	key string
	set func(c *Config, v string)
}{
	{"TINYIRCD_LISTEN", func(c *Config, v string) { c.Listen = v }},
	{"TINYIRCD_SERVER_NAME", func(c *Config, v string) { c.ServerName = v }},
	{"TINYIRCD_OPER_NAME", func(c *Config, v string) { c.Oper.Name = v }},
	{"TINYIRCD_OPER_PASSWORD", func(c *Config, v string) { c.Oper.Password = v }},
	{"TINYIRCD_METRICS_LISTEN", func(c *Config, v string) { c.MetricsListen = v }},
}

func (c *Config) applyEnv() {
	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.key); ok {
			o.set(c, v)
		}
	}
}

// Validate checks capacities, limits and keepalive ordering
func (c *Config) Validate() error {
	var problems []string

	if c.ServerName == "" || strings.ContainsAny(c.ServerName, " \r\n\x00") {
		problems = append(problems, "server_name must be a single non-empty token")
	}
	if c.MaxUsers <= 0 {
		problems = append(problems, "max_users must be positive")
	}
	if c.MaxChannels <= 0 {
		problems = append(problems, "max_channels must be positive")
	}
	if c.MaxParams <= 0 {
		problems = append(problems, "max_params must be positive")
	}

	l := c.Limits
	if l.Line <= 0 || l.Nick <= 0 || l.User <= 0 || l.Real <= 0 ||
		l.Channel <= 0 || l.Topic <= 0 || l.Away <= 0 {
		problems = append(problems, "limits must all be positive")
	}

	k := c.Keepalive
	if k.Tick <= 0 {
		problems = append(problems, "keepalive.tick must be positive")
	}
	if k.UnregisteredTimeout <= 0 || k.UnregisteredTimeout > k.PingTime || k.PingTime >= k.PingTimeout {
		problems = append(problems, "keepalive thresholds must satisfy 0 < unregistered_timeout <= ping_time < ping_timeout")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
