// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"
)

// LIndex returns the element at index. found is false when the index is
// out of range or the key does not exist.
func (c *Conn) LIndex(ctx context.Context, key string, index int64) (value []byte, found bool, err error) {
	return doOptional(ctx, c, NewCommand("LINDEX", key, index), optionalBytes)
}

// LLen returns the length of the list at key.
func (c *Conn) LLen(ctx context.Context, key string) (int64, error) {
	return doReply(ctx, c, NewCommand("LLEN", key), IntReply)
}

// LPop removes and returns the first element. found is false on an empty list.
func (c *Conn) LPop(ctx context.Context, key string) (value []byte, found bool, err error) {
	return doOptional(ctx, c, NewCommand("LPOP", key), optionalBytes)
}

// LPush prepends values and returns the new length.
func (c *Conn) LPush(ctx context.Context, key string, values ...any) (int64, error) {
	return doReply(ctx, c, NewCommand("LPUSH", args([]any{key}, values...)...), IntReply)
}

// LPushX prepends values only if the list exists. It returns the new
// length, 0 when nothing was pushed.
func (c *Conn) LPushX(ctx context.Context, key string, values ...any) (int64, error) {
	return doReply(ctx, c, NewCommand("LPUSHX", args([]any{key}, values...)...), IntReply)
}

// LRange returns the elements between start and stop, both inclusive.
// Negative indexes count from the tail.
func (c *Conn) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return doReply(ctx, c, NewCommand("LRANGE", key, start, stop), StringsReply)
}

// LSet overwrites the element at index.
func (c *Conn) LSet(ctx context.Context, key string, index int64, value any) error {
	_, err := doReply(ctx, c, NewCommand("LSET", key, index, value), OKReply)
	return err
}

// RPop removes and returns the last element. found is false on an empty list.
func (c *Conn) RPop(ctx context.Context, key string) (value []byte, found bool, err error) {
	return doOptional(ctx, c, NewCommand("RPOP", key), optionalBytes)
}

// RPush appends values and returns the new length.
func (c *Conn) RPush(ctx context.Context, key string, values ...any) (int64, error) {
	return doReply(ctx, c, NewCommand("RPUSH", args([]any{key}, values...)...), IntReply)
}

// RPushX appends values only if the list exists.
func (c *Conn) RPushX(ctx context.Context, key string, values ...any) (int64, error) {
	return doReply(ctx, c, NewCommand("RPUSHX", args([]any{key}, values...)...), IntReply)
}
