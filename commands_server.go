// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Ping checks the connection, redialing it first if it broke.
func (c *Conn) Ping(ctx context.Context) error {
	s, err := doReply(ctx, c, NewCommand("PING"), StatusReply)
	if err != nil {
		return err
	}
	if s != "PONG" {
		return errors.Wrapf(ErrTypeMismatch, "want PONG, got %q", s)
	}
	return nil
}

// Echo returns msg as echoed by the server.
func (c *Conn) Echo(ctx context.Context, msg string) (string, error) {
	b, err := doReply(ctx, c, NewCommand("ECHO", msg), BytesReply)
	return string(b), err
}

// FlushAll removes every key of every database.
func (c *Conn) FlushAll(ctx context.Context) error {
	_, err := doReply(ctx, c, NewCommand("FLUSHALL"), OKReply)
	return err
}

// FlushDB removes every key of the selected database.
func (c *Conn) FlushDB(ctx context.Context) error {
	_, err := doReply(ctx, c, NewCommand("FLUSHDB"), OKReply)
	return err
}
