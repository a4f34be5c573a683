// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"

	"github.com/cockroachdb/errors"
)

// HDel removes fields from the hash at key and returns how many existed.
func (c *Conn) HDel(ctx context.Context, key string, fields ...string) (int64, error) {
	return doReply(ctx, c, NewCommand("HDEL", args([]any{key}, fields...)...), IntReply)
}

// HExists reports whether field exists in the hash at key.
func (c *Conn) HExists(ctx context.Context, key, field string) (bool, error) {
	return doReply(ctx, c, NewCommand("HEXISTS", key, field), BoolReply)
}

// HGet returns the value of field. found is false when the field or the
// key does not exist.
func (c *Conn) HGet(ctx context.Context, key, field string) (value []byte, found bool, err error) {
	return doOptional(ctx, c, NewCommand("HGET", key, field), optionalBytes)
}

// HGetAll returns every field and value of the hash at key.
func (c *Conn) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return doReply(ctx, c, NewCommand("HGETALL", key), pairsReply)
}

// HIncrBy increments field by n.
func (c *Conn) HIncrBy(ctx context.Context, key, field string, n int64) (int64, error) {
	return doReply(ctx, c, NewCommand("HINCRBY", key, field, n), IntReply)
}

// HIncrByFloat increments field by f.
func (c *Conn) HIncrByFloat(ctx context.Context, key, field string, f float64) (float64, error) {
	return doReply(ctx, c, NewCommand("HINCRBYFLOAT", key, field, f), floatReply)
}

// HKeys returns the field names of the hash at key.
func (c *Conn) HKeys(ctx context.Context, key string) ([]string, error) {
	return doReply(ctx, c, NewCommand("HKEYS", key), StringsReply)
}

// HLen returns the number of fields in the hash at key.
func (c *Conn) HLen(ctx context.Context, key string) (int64, error) {
	return doReply(ctx, c, NewCommand("HLEN", key), IntReply)
}

// HMGet returns the values of fields in order. Missing fields are nil.
func (c *Conn) HMGet(ctx context.Context, key string, fields ...string) ([][]byte, error) {
	return doReply(ctx, c, NewCommand("HMGET", args([]any{key}, fields...)...), BulksReply)
}

// HMSet sets several fields. pairs alternates field names and values.
func (c *Conn) HMSet(ctx context.Context, key string, pairs ...any) error {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return errors.Wrapf(ErrInvalidArgument, "HMSET needs field/value pairs, got %d arguments", len(pairs))
	}
	_, err := doReply(ctx, c, NewCommand("HMSET", args([]any{key}, pairs...)...), OKReply)
	return err
}

// HSet stores value in field. It reports whether the field is new; false
// means an existing field was overwritten.
func (c *Conn) HSet(ctx context.Context, key, field string, value any) (bool, error) {
	return doReply(ctx, c, NewCommand("HSET", key, field, value), BoolReply)
}

// HSetNX stores value only if field does not exist and reports whether it did.
func (c *Conn) HSetNX(ctx context.Context, key, field string, value any) (bool, error) {
	return doReply(ctx, c, NewCommand("HSETNX", key, field, value), BoolReply)
}

// HVals returns the values of the hash at key.
func (c *Conn) HVals(ctx context.Context, key string) ([]string, error) {
	return doReply(ctx, c, NewCommand("HVALS", key), StringsReply)
}

// HStrLen returns the length of the value of field, 0 when it does not exist.
func (c *Conn) HStrLen(ctx context.Context, key, field string) (int64, error) {
	return doReply(ctx, c, NewCommand("HSTRLEN", key, field), IntReply)
}
