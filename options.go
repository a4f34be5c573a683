// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

const (
	defaultAddr              = "localhost:6379"
	defaultConnectTimeout    = 5 * time.Second
	defaultReadBuffer        = 16 << 10
	defaultReconnectAttempts = 3
	defaultReconnectInitial  = 50 * time.Millisecond
	defaultReconnectMax      = 2 * time.Second
)

// options holds the configuration of a Conn.
type options struct {
	addr     string
	password string
	db       int
	tls      *tls.Config
	dialer   Dialer

	connectTimeout time.Duration
	readBuffer     int

	reconnect         bool
	reconnectAttempts int
	reconnectInitial  time.Duration
	reconnectMax      time.Duration

	scheduler Scheduler
	logger    zerolog.Logger
}

func defaultOptions() options {
	return options{
		addr:              defaultAddr,
		connectTimeout:    defaultConnectTimeout,
		readBuffer:        defaultReadBuffer,
		reconnect:         true,
		reconnectAttempts: defaultReconnectAttempts,
		reconnectInitial:  defaultReconnectInitial,
		reconnectMax:      defaultReconnectMax,
		logger:            zerolog.Nop(),
	}
}

// Option configures a Conn.
type Option func(*options) error

// WithAddr sets the server address as host:port.
//
// Example:
//
//	WithAddr("cache.internal:6379")
func WithAddr(addr string) Option {
	return func(o *options) error {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "address %q: %v", addr, err)
		}
		o.addr = addr
		return nil
	}
}

// WithHostPort sets the server address from its parts.
func WithHostPort(host string, port int) Option {
	return func(o *options) error {
		if port <= 0 || port > 65535 {
			return errors.Wrapf(ErrInvalidConfig, "port %d out of range", port)
		}
		o.addr = net.JoinHostPort(host, strconv.Itoa(port))
		return nil
	}
}

// WithPassword sets the credential sent with AUTH on every connect.
func WithPassword(password string) Option {
	return func(o *options) error {
		o.password = password
		return nil
	}
}

// WithDB selects a database index after every connect. Zero skips SELECT.
func WithDB(db int) Option {
	return func(o *options) error {
		if db < 0 {
			return errors.Wrapf(ErrInvalidConfig, "db index %d is negative", db)
		}
		o.db = db
		return nil
	}
}

// WithTLS dials with TLS using cfg.
func WithTLS(cfg *tls.Config) Option {
	return func(o *options) error {
		o.tls = cfg
		return nil
	}
}

// WithDialer replaces the TCP/TLS dialer. WithTLS, WithConnectTimeout and
// WithReadBuffer then only apply if d uses them.
func WithDialer(d Dialer) Option {
	return func(o *options) error {
		if d == nil {
			return errors.Wrap(ErrInvalidConfig, "nil dialer")
		}
		o.dialer = d
		return nil
	}
}

// WithConnectTimeout bounds each dial.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		if timeout <= 0 {
			return errors.Wrapf(ErrInvalidConfig, "connect timeout %s", timeout)
		}
		o.connectTimeout = timeout
		return nil
	}
}

// WithReadBuffer sets the size of transport reads and the initial decoder buffer.
func WithReadBuffer(size int) Option {
	return func(o *options) error {
		if size < 64 {
			return errors.Wrapf(ErrInvalidConfig, "read buffer %d below 64 bytes", size)
		}
		o.readBuffer = size
		return nil
	}
}

// WithReconnect toggles redialing before the next command after the
// transport breaks. On by default.
func WithReconnect(enabled bool) Option {
	return func(o *options) error {
		o.reconnect = enabled
		return nil
	}
}

// WithReconnectAttempts sets how many redials follow the first failed one.
func WithReconnectAttempts(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return errors.Wrapf(ErrInvalidConfig, "reconnect attempts %d", n)
		}
		o.reconnectAttempts = n
		return nil
	}
}

// WithReconnectBackoff sets the first and the largest delay between redials.
func WithReconnectBackoff(initial, maxDelay time.Duration) Option {
	return func(o *options) error {
		if initial <= 0 || maxDelay < initial {
			return errors.Wrapf(ErrInvalidConfig, "reconnect backoff %s..%s", initial, maxDelay)
		}
		o.reconnectInitial = initial
		o.reconnectMax = maxDelay
		return nil
	}
}

// WithScheduler installs the cooperative Yield/Ready hooks.
func WithScheduler(s Scheduler) Option {
	return func(o *options) error {
		o.scheduler = s
		return nil
	}
}

// WithLogger sets the lifecycle logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}
