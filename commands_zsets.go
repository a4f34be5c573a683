// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
)

// Z is a sorted-set member with its score.
type Z struct {
	Member string
	Score  float64
}

// ZAdd adds or updates members and returns how many were new.
func (c *Conn) ZAdd(ctx context.Context, key string, members ...Z) (int64, error) {
	if len(members) == 0 {
		return 0, errors.Wrap(ErrInvalidArgument, "ZADD needs at least one member")
	}
	a := make([]any, 0, 1+2*len(members))
	a = append(a, key)
	for _, m := range members {
		if math.IsNaN(m.Score) {
			return 0, errors.Wrapf(ErrInvalidArgument, "ZADD score of %q is NaN", m.Member)
		}
		a = append(a, m.Score, m.Member)
	}
	return doReply(ctx, c, NewCommand("ZADD", a...), IntReply)
}

// ZCard returns the number of members.
func (c *Conn) ZCard(ctx context.Context, key string) (int64, error) {
	return doReply(ctx, c, NewCommand("ZCARD", key), IntReply)
}

// ZCount returns the number of members scored within [min, max].
// Infinite bounds are allowed.
func (c *Conn) ZCount(ctx context.Context, key string, min, max float64) (int64, error) {
	return doReply(ctx, c, NewCommand("ZCOUNT", key, min, max), IntReply)
}

// ZIncrBy adds incr to the score of member and returns the new score.
func (c *Conn) ZIncrBy(ctx context.Context, key string, incr float64, member string) (float64, error) {
	return doReply(ctx, c, NewCommand("ZINCRBY", key, incr, member), floatReply)
}

// ZRange returns members by ascending rank between start and stop.
func (c *Conn) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return doReply(ctx, c, NewCommand("ZRANGE", key, start, stop), StringsReply)
}

// ZRangeWithScores is ZRange returning scores too.
func (c *Conn) ZRangeWithScores(ctx context.Context, key string, start, stop int64) ([]Z, error) {
	return doReply(ctx, c, NewCommand("ZRANGE", key, start, stop, "WITHSCORES"), scoredReply)
}

// ZRangeByScore returns members scored within [min, max], lowest first.
func (c *Conn) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error) {
	return doReply(ctx, c, NewCommand("ZRANGEBYSCORE", key, min, max), StringsReply)
}

// ZRank returns the ascending rank of member. found is false when the
// member or the key does not exist.
func (c *Conn) ZRank(ctx context.Context, key, member string) (rank int64, found bool, err error) {
	return doOptional(ctx, c, NewCommand("ZRANK", key, member), optionalInt)
}

// ZRem removes members and returns how many existed.
func (c *Conn) ZRem(ctx context.Context, key string, members ...string) (int64, error) {
	return doReply(ctx, c, NewCommand("ZREM", args([]any{key}, members...)...), IntReply)
}

// ZRemRangeByRank removes members ranked between start and stop.
func (c *Conn) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) (int64, error) {
	return doReply(ctx, c, NewCommand("ZREMRANGEBYRANK", key, start, stop), IntReply)
}

// ZRemRangeByScore removes members scored within [min, max].
func (c *Conn) ZRemRangeByScore(ctx context.Context, key string, min, max float64) (int64, error) {
	return doReply(ctx, c, NewCommand("ZREMRANGEBYSCORE", key, min, max), IntReply)
}

// ZRevRange returns members by descending rank between start and stop.
func (c *Conn) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return doReply(ctx, c, NewCommand("ZREVRANGE", key, start, stop), StringsReply)
}

// ZRevRangeByScore returns members scored within [min, max], highest first.
func (c *Conn) ZRevRangeByScore(ctx context.Context, key string, max, min float64) ([]string, error) {
	return doReply(ctx, c, NewCommand("ZREVRANGEBYSCORE", key, max, min), StringsReply)
}

// ZRevRank returns the descending rank of member.
func (c *Conn) ZRevRank(ctx context.Context, key, member string) (rank int64, found bool, err error) {
	return doOptional(ctx, c, NewCommand("ZREVRANK", key, member), optionalInt)
}

// ZScore returns the score of member. found is false when it does not exist.
func (c *Conn) ZScore(ctx context.Context, key, member string) (score float64, found bool, err error) {
	return doOptional(ctx, c, NewCommand("ZSCORE", key, member), func(r *Result) (float64, bool, error) {
		return r.Float()
	})
}
