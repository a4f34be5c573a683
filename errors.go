// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrProtocol reports malformed reply bytes. The stream position is lost,
	// so the connection that produced it must be replaced.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrConnection reports a closed or unreachable transport. Results that
	// were pending when it happened complete with KindConnError.
	ErrConnection = errors.New("resp: connection error")

	// ErrTypeMismatch reports an accessor that does not match the reply kind.
	ErrTypeMismatch = errors.New("resp: reply type mismatch")

	// ErrPending reports a read of a Result whose reply has not arrived.
	ErrPending = errors.New("resp: reply pending")

	// ErrReleasePending reports Release on a Result that is still in flight.
	ErrReleasePending = errors.New("resp: release of pending result")

	// ErrStaleHandle reports a Handle whose slot was already released.
	ErrStaleHandle = errors.New("resp: stale handle")

	// ErrNotConnected reports a command issued without a transport.
	ErrNotConnected = errors.New("resp: not connected")

	// ErrClosed reports use of a closed Conn.
	ErrClosed = errors.New("resp: connection closed")

	// ErrAuth marks a rejected AUTH. The transport stays open.
	ErrAuth = errors.New("resp: authentication failed")

	// ErrInvalidConfig reports an invalid option or configuration value.
	ErrInvalidConfig = errors.New("resp: invalid configuration")

	// ErrInvalidArgument reports command arguments rejected before sending.
	ErrInvalidArgument = errors.New("resp: invalid argument")
)

// ServerError is an error reply ("-" tag) sent by the server.
// The connection remains usable after it.
type ServerError struct {
	Msg string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return e.Msg
}

// Prefix returns the error code, the first word of the message
// (ERR, WRONGTYPE, NOAUTH, ...).
func (e *ServerError) Prefix() string {
	if i := strings.IndexByte(e.Msg, ' '); i >= 0 {
		return e.Msg[:i]
	}
	return e.Msg
}

// IsServerError reports whether err carries a server error reply.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

func protocolErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrProtocol, format, args...)
}

func connError(cause error) error {
	if cause == nil {
		return ErrConnection
	}
	if errors.Is(cause, ErrConnection) {
		return cause
	}
	return errors.Mark(errors.Wrap(cause, "resp: connection error"), ErrConnection)
}
