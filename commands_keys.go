// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"
	"time"

	"code.hybscloud.com/kont"
	"github.com/cockroachdb/errors"
)

// NoTTL is the TTL of a key that exists but never expires.
const NoTTL time.Duration = -1

// Del removes keys and returns how many existed.
func (c *Conn) Del(ctx context.Context, keys ...string) (int64, error) {
	return doReply(ctx, c, NewCommand("DEL", args[string](nil, keys...)...), IntReply)
}

// Exists returns how many of keys exist. A key named twice counts twice.
func (c *Conn) Exists(ctx context.Context, keys ...string) (int64, error) {
	return doReply(ctx, c, NewCommand("EXISTS", args[string](nil, keys...)...), IntReply)
}

// Expire sets a timeout on key, truncated to whole seconds. It reports
// false if the key does not exist.
func (c *Conn) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return doReply(ctx, c, NewCommand("EXPIRE", key, ttl), BoolReply)
}

// ExpireAt sets key to expire at t. It reports false if the key does not exist.
func (c *Conn) ExpireAt(ctx context.Context, key string, t time.Time) (bool, error) {
	return doReply(ctx, c, NewCommand("EXPIREAT", key, t.Unix()), BoolReply)
}

// Persist removes the timeout of key. It reports false if the key does
// not exist or had no timeout.
func (c *Conn) Persist(ctx context.Context, key string) (bool, error) {
	return doReply(ctx, c, NewCommand("PERSIST", key), BoolReply)
}

// TTL returns the remaining time to live of key. found is false when the
// key does not exist; a key without a timeout reports NoTTL.
func (c *Conn) TTL(ctx context.Context, key string) (ttl time.Duration, found bool, err error) {
	return doOptional(ctx, c, NewCommand("TTL", key), func(r *Result) (time.Duration, bool, error) {
		n, err := r.Int()
		switch {
		case err != nil:
			return 0, false, err
		case n == -2:
			return 0, false, nil
		case n == -1:
			return NoTTL, true, nil
		case n < 0:
			return 0, false, errors.Wrapf(ErrTypeMismatch, "ttl %d", n)
		}
		return time.Duration(n) * time.Second, true, nil
	})
}

// Type returns the type name of key, "none" when it does not exist.
func (c *Conn) Type(ctx context.Context, key string) (string, error) {
	return doReply(ctx, c, NewCommand("TYPE", key), StatusReply)
}

// ScanAll walks the keyspace with SCAN and returns every key matching
// pattern. count is a per-round hint; zero leaves it to the server. Keys
// changed during the walk may be missed or repeated, as SCAN allows.
func (c *Conn) ScanAll(ctx context.Context, pattern string, count int) ([]string, error) {
	type walk struct {
		cursor string
		keys   []string
	}
	step := func(w walk) kont.Eff[kont.Either[walk, []string]] {
		a := []any{w.cursor}
		if pattern != "" {
			a = append(a, "MATCH", pattern)
		}
		if count > 0 {
			a = append(a, "COUNT", count)
		}
		return CallBind(NewCommand("SCAN", a...), scanReply, func(e kont.Either[error, scanPage]) kont.Eff[kont.Either[walk, []string]] {
			return kont.Bind(Must(e), func(p scanPage) kont.Eff[kont.Either[walk, []string]] {
				keys := append(w.keys, p.keys...)
				if p.cursor == "0" {
					return kont.Pure(kont.Right[walk, []string](keys))
				}
				return kont.Pure(kont.Left[walk, []string](walk{cursor: p.cursor, keys: keys}))
			})
		})
	}
	keys, err := ExecContext(ctx, c, Loop(walk{cursor: "0", keys: []string{}}, step))
	if err != nil {
		return nil, err
	}
	return keys, nil
}
