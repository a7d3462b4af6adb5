// Package config loads the demonstration CLI's configuration: a YAML file
// merged with environment variable defaults and command-line overrides,
// the same three-tier shape the teacher's env-only loader used, extended
// to a file tier because this core's Config carries credentials operators
// expect to keep out of shell history. The core itself (internal/core/...)
// never imports this package — it only ever sees the conn.Config and
// session parameters this package produces.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rcarmo/go-rdp-core/internal/core/conn"
	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML shape. Every field is optional; absent fields
// fall through to environment variables, then to hardcoded defaults.
type File struct {
	Server ServerFile `yaml:"server"`
	RDP    RDPFile    `yaml:"rdp"`
	Log    LogFile    `yaml:"log"`
}

// ServerFile configures the demonstration binary's own listener, not
// anything the RDP core cares about.
type ServerFile struct {
	ListenAddr string `yaml:"listenAddr"`
}

// RDPFile mirrors conn.Config's fields plus the Host/Port the demonstration
// binary dials (desktop size, color depth and the EnableRFX codec switch
// map onto conn.Config's own fields).
type RDPFile struct {
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	ClientName    string   `yaml:"clientName"`
	DesktopWidth  uint16   `yaml:"desktopWidth"`
	DesktopHeight uint16   `yaml:"desktopHeight"`
	ColorDepth    int      `yaml:"colorDepth"`
	Domain        string   `yaml:"domain"`
	Username      string   `yaml:"username"`
	Password      string   `yaml:"password"`
	Channels      []string `yaml:"channels"`
	RequestNLA    bool     `yaml:"requestNLA"`
	EnableRFX     bool     `yaml:"enableRFX"`
}

// LogFile configures internal/corelog's output.
type LogFile struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Options holds command-line overrides, applied after the file and
// environment tiers so a one-off flag always wins.
type Options struct {
	ConfigFile string
	Host       string
	Port       int
	Username   string
	Password   string
	LogLevel   string
}

// Config is the loaded, validated result: what the demonstration binary
// needs to dial a server (Host/Port) plus the conn.Config the core
// consumes directly.
type Config struct {
	Host       string
	Port       int
	ListenAddr string
	LogLevel   string
	LogFormat  string
	Conn       conn.Config
}

// Load reads the YAML file named by opts.ConfigFile if present, uses
// environment variables for fields the file leaves unset, then applies
// opts, and finally validates the resulting conn.Config.
func Load(opts Options) (*Config, error) {
	var file File
	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := &Config{
		Host:       firstNonEmpty(opts.Host, file.RDP.Host, envString("RDPCAPTURE_HOST", "")),
		Port:       firstNonZeroInt(opts.Port, file.RDP.Port, envInt("RDPCAPTURE_PORT", 3389)),
		ListenAddr: firstNonEmpty(file.Server.ListenAddr, envString("RDPCAPTURE_LISTEN", ":8080")),
		LogLevel:   firstNonEmpty(opts.LogLevel, file.Log.Level, envString("RDPCAPTURE_LOG_LEVEL", "info")),
		LogFormat:  firstNonEmpty(file.Log.Format, envString("RDPCAPTURE_LOG_FORMAT", "text")),
		Conn: conn.Config{
			ClientName:    firstNonEmpty(file.RDP.ClientName, envString("RDPCAPTURE_CLIENT_NAME", "go-rdp-core")),
			DesktopWidth:  firstNonZeroUint16(file.RDP.DesktopWidth, uint16(envInt("RDPCAPTURE_WIDTH", 1024))),
			DesktopHeight: firstNonZeroUint16(file.RDP.DesktopHeight, uint16(envInt("RDPCAPTURE_HEIGHT", 768))),
			ColorDepth:    firstNonZeroInt(file.RDP.ColorDepth, envInt("RDPCAPTURE_COLOR_DEPTH", 32)),
			Domain:        file.RDP.Domain,
			Username:      firstNonEmpty(opts.Username, file.RDP.Username, envString("RDPCAPTURE_USERNAME", "")),
			Password:      firstNonEmpty(opts.Password, file.RDP.Password, envString("RDPCAPTURE_PASSWORD", "")),
			ChannelNames: file.RDP.Channels,
			// YAML's zero value for bool is indistinguishable from "unset",
			// so a config file can only turn these on, never override the
			// environment default off; set via RDPCAPTURE_REQUEST_NLA=false
			// instead of a file field to disable.
			RequestNLA: file.RDP.RequestNLA || envBool("RDPCAPTURE_REQUEST_NLA", true),
			EnableRFX:  file.RDP.EnableRFX || envBool("RDPCAPTURE_ENABLE_RFX", true),
		},
	}
	if len(cfg.Conn.ChannelNames) == 0 {
		cfg.Conn.ChannelNames = []string{"rdpdr", "cliprdr"}
	}

	if err := cfg.Conn.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rdp config: %w", err)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("invalid rdp config: host is required")
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZeroInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstNonZeroUint16(values ...uint16) uint16 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}
