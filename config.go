// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"crypto/tls"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// Config is the file form of the connection options. Start from
// DefaultConfig; zero durations and sizes mean the default.
type Config struct {
	Addr              string
	Password          string
	DB                int
	TLS               bool
	TLSServerName     string
	ConnectTimeout    time.Duration
	ReadBuffer        int
	Reconnect         bool
	ReconnectAttempts int
	ReconnectInitial  time.Duration
	ReconnectMax      time.Duration
}

type fileConfig struct {
	Addr              string `toml:"addr"`
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	Password          string `toml:"password"`
	DB                int    `toml:"db"`
	TLS               bool   `toml:"tls"`
	TLSServerName     string `toml:"tls_server_name"`
	ConnectTimeout    string `toml:"connect_timeout"`
	ReadBuffer        int    `toml:"read_buffer"`
	Reconnect         bool   `toml:"reconnect"`
	ReconnectAttempts int    `toml:"reconnect_attempts"`
	ReconnectInitial  string `toml:"reconnect_initial"`
	ReconnectMax      string `toml:"reconnect_max"`
}

// DefaultConfig returns the configuration New uses without options.
func DefaultConfig() Config {
	o := defaultOptions()
	return Config{
		Addr:              o.addr,
		ConnectTimeout:    o.connectTimeout,
		ReadBuffer:        o.readBuffer,
		Reconnect:         o.reconnect,
		ReconnectAttempts: o.reconnectAttempts,
		ReconnectInitial:  o.reconnectInitial,
		ReconnectMax:      o.reconnectMax,
	}
}

// LoadConfig reads a TOML file. Keys absent from the file keep their
// defaults; durations are strings such as "250ms".
//
//	addr = "cache.internal:6379"
//	password = "secret"
//	db = 2
//	connect_timeout = "2s"
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}

	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("host") || meta.IsDefined("port") {
		if meta.IsDefined("addr") {
			return Config{}, errors.Wrap(ErrInvalidConfig, "addr and host/port are exclusive")
		}
		o := defaultOptions()
		if err := WithHostPort(strings.TrimSpace(raw.Host), raw.Port)(&o); err != nil {
			return Config{}, err
		}
		cfg.Addr = o.addr
	}
	if meta.IsDefined("password") {
		cfg.Password = raw.Password
	}
	if meta.IsDefined("db") {
		cfg.DB = raw.DB
	}
	if meta.IsDefined("tls") {
		cfg.TLS = raw.TLS
	}
	if meta.IsDefined("tls_server_name") {
		cfg.TLSServerName = strings.TrimSpace(raw.TLSServerName)
	}
	if meta.IsDefined("read_buffer") {
		cfg.ReadBuffer = raw.ReadBuffer
	}
	if meta.IsDefined("reconnect") {
		cfg.Reconnect = raw.Reconnect
	}
	if meta.IsDefined("reconnect_attempts") {
		cfg.ReconnectAttempts = raw.ReconnectAttempts
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"connect_timeout", raw.ConnectTimeout, &cfg.ConnectTimeout},
		{"reconnect_initial", raw.ReconnectInitial, &cfg.ReconnectInitial},
		{"reconnect_max", raw.ReconnectMax, &cfg.ReconnectMax},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, errors.Wrapf(ErrInvalidConfig, "parse %s: %v", d.key, err)
		}
		*d.dst = v
	}

	o := defaultOptions()
	for _, opt := range cfg.Options() {
		if err := opt(&o); err != nil {
			return Config{}, errors.Wrapf(err, "config %s", path)
		}
	}
	return cfg, nil
}

// Options converts cfg to the equivalent Option list.
func (cfg Config) Options() []Option {
	opts := []Option{
		WithAddr(cfg.Addr),
		WithDB(cfg.DB),
		WithReconnect(cfg.Reconnect),
		WithReconnectAttempts(cfg.ReconnectAttempts),
	}
	if cfg.Password != "" {
		opts = append(opts, WithPassword(cfg.Password))
	}
	if cfg.TLS {
		opts = append(opts, WithTLS(&tls.Config{
			ServerName: cfg.TLSServerName,
			MinVersion: tls.VersionTLS12,
		}))
	}
	if cfg.ConnectTimeout != 0 {
		opts = append(opts, WithConnectTimeout(cfg.ConnectTimeout))
	}
	if cfg.ReadBuffer != 0 {
		opts = append(opts, WithReadBuffer(cfg.ReadBuffer))
	}
	if cfg.ReconnectInitial != 0 || cfg.ReconnectMax != 0 {
		opts = append(opts, WithReconnectBackoff(cfg.ReconnectInitial, cfg.ReconnectMax))
	}
	return opts
}
