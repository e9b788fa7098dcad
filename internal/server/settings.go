package server

import (
	"cmp"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/standup-issues/internal/config"
)

const (
	// DefaultPort is the port `standup serve` binds when nothing overrides it.
	DefaultPort = 8787
	// DefaultMaxBodyBytes caps a drafts payload or an edited document at 1 MB.
	DefaultMaxBodyBytes int64 = 1 << 20
)

// Timeouts bound the phases of one HTTP connection.
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// Settings configures the render/parse server. Port 0 asks the kernel for a
// free port.
type Settings struct {
	Host         string
	Port         int
	MaxBodyBytes int64
	Timeouts     Timeouts
}

var defaultSettings = Settings{
	Host:         "127.0.0.1",
	Port:         DefaultPort,
	MaxBodyBytes: DefaultMaxBodyBytes,
	Timeouts:     Timeouts{Read: 15 * time.Second, Write: 15 * time.Second, Idle: time.Minute},
}

// SettingsFromConfig reads the server block of a loaded config. config.Load
// has already applied STANDUP_SERVER_PORT.
func SettingsFromConfig(cfg *config.Config) Settings {
	settings := defaultSettings
	if cfg != nil {
		raw := cfg.Project.Server
		settings.Host = raw.Host
		settings.MaxBodyBytes = raw.MaxRequestBytes
		if raw.Port != 0 {
			settings.Port = raw.Port
		}
	}
	return settings.withDefaults()
}

// withDefaults fills every unset field from defaultSettings.
func (s Settings) withDefaults() Settings {
	s.Host = cmp.Or(strings.TrimSpace(s.Host), defaultSettings.Host)
	s.MaxBodyBytes = positiveOr(s.MaxBodyBytes, defaultSettings.MaxBodyBytes)
	s.Timeouts.Read = positiveOr(s.Timeouts.Read, defaultSettings.Timeouts.Read)
	s.Timeouts.Write = positiveOr(s.Timeouts.Write, defaultSettings.Timeouts.Write)
	s.Timeouts.Idle = positiveOr(s.Timeouts.Idle, defaultSettings.Timeouts.Idle)
	return s
}

// Validate reports settings no listener can use.
func (s Settings) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("server: port %d outside 0-65535", s.Port)
	}
	return nil
}

// Address is the host:port the listener binds.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL is the base URL clients use for the configured address.
func (s Settings) URL() string {
	return "http://" + s.Address()
}

func positiveOr[T int64 | time.Duration](value, fallback T) T {
	if value > 0 {
		return value
	}
	return fallback
}
