// Package config loads the connection/sync settings file and applies the
// command-line overrides. The engine consumes the result as plain data.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/richiec/ftpfetch/pkg/pathutil"
)

// Remote protocols.
const (
	ProtocolFTP = "ftp"
	ProtocolS3  = "s3"
)

const (
	defaultPort    = 21
	defaultTimeout = 60
)

// ErrInvalidConfig marks settings that parsed but fail validation, so the
// CLI can tell a bad file apart from an unreadable one with errors.Is.
var ErrInvalidConfig = errors.New("invalid config")

// Connection describes how to reach the remote side. For S3 the host is
// the bucket name and user/password/tls/port are ignored.
type Connection struct {
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	TLS      bool   `json:"tls"`
	Port     int    `json:"port"`
	Timeout  int    `json:"timeout"`
	Protocol string `json:"protocol"`
}

// Config is the full settings file.
type Config struct {
	RemoteConnection Connection `json:"remote_connection"`
	RemoteRoot       string     `json:"remote_root"`
	LocalRoot        string     `json:"local_root"`
	Blacklist        []string   `json:"blacklist"`
	Whitelist        []string   `json:"whitelist"`
}

// Load reads, validates and normalizes the settings file. All paths come
// out in the engine's canonical slash form; the local root keeps its bare
// drive-letter form on Windows.
func Load(path string) (*Config, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, fmt.Errorf("%w: file is not of type JSON: %s", ErrInvalidConfig, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.normalize()

	return &cfg, nil
}

// Override replaces settings with their command-line counterparts. Lists
// replace the configured values entirely; they are not merged. Empty
// arguments leave the configuration untouched.
func (c *Config) Override(password, whitelist, blacklist string) {
	if password != "" {
		c.RemoteConnection.Password = password
	}
	if whitelist != "" {
		c.Whitelist = splitList(whitelist)
	}
	if blacklist != "" {
		c.Blacklist = splitList(blacklist)
	}
}

func (c *Config) applyDefaults() {
	if c.RemoteConnection.Protocol == "" {
		c.RemoteConnection.Protocol = ProtocolFTP
	}
	if c.RemoteConnection.Port == 0 {
		c.RemoteConnection.Port = defaultPort
	}
	if c.RemoteConnection.Timeout == 0 {
		c.RemoteConnection.Timeout = defaultTimeout
	}
}

func (c *Config) validate() error {
	switch c.RemoteConnection.Protocol {
	case ProtocolFTP:
		if c.RemoteConnection.User == "" {
			return fmt.Errorf("%w: remote_connection.user is required", ErrInvalidConfig)
		}
	case ProtocolS3:
	default:
		return fmt.Errorf("%w: unknown protocol %q (want %q or %q)",
			ErrInvalidConfig, c.RemoteConnection.Protocol, ProtocolFTP, ProtocolS3)
	}
	if c.RemoteConnection.Host == "" {
		return fmt.Errorf("%w: remote_connection.host is required", ErrInvalidConfig)
	}
	if c.LocalRoot == "" {
		return fmt.Errorf("%w: local_root is required", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) normalize() {
	c.RemoteRoot = pathutil.Normalize(c.RemoteRoot, true)
	c.LocalRoot = pathutil.Normalize(c.LocalRoot, runtime.GOOS != "windows")
	c.Whitelist = normalizeList(c.Whitelist)
	c.Blacklist = normalizeList(c.Blacklist)
}

func splitList(s string) []string {
	return normalizeList(strings.Split(s, ","))
}

func normalizeList(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if p := pathutil.Normalize(strings.TrimSpace(e), true); p != "" {
			out = append(out, p)
		}
	}
	return out
}
