// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// Append appends value to key and returns the new length.
func (c *Conn) Append(ctx context.Context, key string, value any) (int64, error) {
	return doReply(ctx, c, NewCommand("APPEND", key, value), IntReply)
}

// Decr decrements key by one.
func (c *Conn) Decr(ctx context.Context, key string) (int64, error) {
	return doReply(ctx, c, NewCommand("DECR", key), IntReply)
}

// DecrBy decrements key by n.
func (c *Conn) DecrBy(ctx context.Context, key string, n int64) (int64, error) {
	return doReply(ctx, c, NewCommand("DECRBY", key, n), IntReply)
}

// Get returns the value of key. found is false when the key does not exist.
func (c *Conn) Get(ctx context.Context, key string) (value []byte, found bool, err error) {
	return doOptional(ctx, c, NewCommand("GET", key), optionalBytes)
}

// GetSet stores value and returns the previous one, if any.
func (c *Conn) GetSet(ctx context.Context, key string, value any) (old []byte, found bool, err error) {
	return doOptional(ctx, c, NewCommand("GETSET", key, value), optionalBytes)
}

// Incr increments key by one.
func (c *Conn) Incr(ctx context.Context, key string) (int64, error) {
	return doReply(ctx, c, NewCommand("INCR", key), IntReply)
}

// IncrBy increments key by n.
func (c *Conn) IncrBy(ctx context.Context, key string, n int64) (int64, error) {
	return doReply(ctx, c, NewCommand("INCRBY", key, n), IntReply)
}

// IncrByFloat increments key by f and returns the new value.
func (c *Conn) IncrByFloat(ctx context.Context, key string, f float64) (float64, error) {
	return doReply(ctx, c, NewCommand("INCRBYFLOAT", key, f), floatReply)
}

// MGet returns the values of keys in order. Missing keys are nil entries.
func (c *Conn) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	return doReply(ctx, c, NewCommand("MGET", args[string](nil, keys...)...), BulksReply)
}

// MSet sets several keys at once. pairs alternates keys and values.
func (c *Conn) MSet(ctx context.Context, pairs ...any) error {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return errors.Wrapf(ErrInvalidArgument, "MSET needs key/value pairs, got %d arguments", len(pairs))
	}
	_, err := doReply(ctx, c, NewCommand("MSET", pairs...), OKReply)
	return err
}

// Set stores value at key.
func (c *Conn) Set(ctx context.Context, key string, value any) error {
	_, err := doReply(ctx, c, NewCommand("SET", key, value), OKReply)
	return err
}

// SetEX stores value at key with a timeout in whole seconds.
func (c *Conn) SetEX(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl < time.Second {
		return errors.Wrapf(ErrInvalidArgument, "SETEX ttl %s below one second", ttl)
	}
	_, err := doReply(ctx, c, NewCommand("SETEX", key, ttl, value), OKReply)
	return err
}

// SetNX stores value only if key does not exist. It reports whether the
// value was stored; false is an answer, not a failure.
func (c *Conn) SetNX(ctx context.Context, key string, value any) (bool, error) {
	return doReply(ctx, c, NewCommand("SETNX", key, value), BoolReply)
}

// StrLen returns the length of the value at key, 0 when it does not exist.
func (c *Conn) StrLen(ctx context.Context, key string) (int64, error) {
	return doReply(ctx, c, NewCommand("STRLEN", key), IntReply)
}

func floatReply(r *Result) (float64, error) {
	f, ok, err := r.Float()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.Wrap(ErrTypeMismatch, "want float, got nil")
	}
	return f, nil
}
