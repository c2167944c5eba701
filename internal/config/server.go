package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/JaimeStill/docsort/pkg/envvar"
)

// ServerConfig holds HTTP listener parameters. Durations are Go duration
// strings so they read naturally in TOML.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	ReadTimeout  string `toml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout"`
	IdleTimeout  string `toml:"idle_timeout"`
	DrainTimeout string `toml:"drain_timeout"`
}

var serverEnv = struct {
	Host, Port, Read, Write, Idle, Drain string
}{
	Host:  "DOCSORT_SERVER_HOST",
	Port:  "DOCSORT_SERVER_PORT",
	Read:  "DOCSORT_SERVER_READ_TIMEOUT",
	Write: "DOCSORT_SERVER_WRITE_TIMEOUT",
	Idle:  "DOCSORT_SERVER_IDLE_TIMEOUT",
	Drain: "DOCSORT_SERVER_DRAIN_TIMEOUT",
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration { return duration(c.ReadTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration { return duration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration { return duration(c.IdleTimeout) }

// DrainTimeoutDuration bounds how long in-flight requests may finish after
// shutdown begins.
func (c *ServerConfig) DrainTimeoutDuration() time.Duration { return duration(c.DrainTimeout) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()

	envvar.String(&c.Host, serverEnv.Host)
	envvar.Int(&c.Port, serverEnv.Port)
	envvar.String(&c.ReadTimeout, serverEnv.Read)
	envvar.String(&c.WriteTimeout, serverEnv.Write)
	envvar.String(&c.IdleTimeout, serverEnv.Idle)
	envvar.String(&c.DrainTimeout, serverEnv.Drain)

	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, f := range []struct{ dst, src *string }{
		{&c.ReadTimeout, &overlay.ReadTimeout},
		{&c.WriteTimeout, &overlay.WriteTimeout},
		{&c.IdleTimeout, &overlay.IdleTimeout},
		{&c.DrainTimeout, &overlay.DrainTimeout},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "30s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "30s"
	}
	if c.IdleTimeout == "" {
		c.IdleTimeout = "2m"
	}
	if c.DrainTimeout == "" {
		c.DrainTimeout = "15s"
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
		"idle_timeout":  c.IdleTimeout,
		"drain_timeout": c.DrainTimeout,
	} {
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			return fmt.Errorf("invalid %s: %q", name, v)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
